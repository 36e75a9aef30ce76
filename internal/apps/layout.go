package apps

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"tinythreads/internal/board"
	"tinythreads/internal/sched"
)

// Spawner creates tasks.
type Spawner interface {
	Spawn(entry sched.Entry, arg int) (sched.TaskID, error)
}

// Kind names a demo task.
type Kind string

const (
	KindPower       Kind = "power"
	KindPrimes      Kind = "primes"
	KindExponential Kind = "exponential"
	KindLED         Kind = "led"
)

// Entry returns the task function of kind k bound to e.
func (e *Env) Entry(k Kind) (sched.Entry, error) {
	switch k {
	case KindPower:
		return e.Power, nil
	case KindPrimes:
		return e.Primes, nil
	case KindExponential:
		return e.Exponential, nil
	case KindLED:
		return e.ToggleLED, nil
	default:
		return nil, fmt.Errorf("unknown task kind %q", k)
	}
}

// Slot places one task on a display segment.
type Slot struct {
	Kind Kind
	Seg  int
}

// Layout is a fixed set of spawned tasks plus the task the caller's own flow
// becomes.
type Layout struct {
	Name  string
	Slots []Slot
	Last  Slot
}

var layouts = map[string]Layout{
	"part1": {
		Name: "part1",
		Slots: []Slot{
			{KindPower, 0},
			{KindPrimes, 1},
			{KindExponential, 2},
			{KindExponential, 3},
		},
		Last: Slot{KindLED, 4},
	},
	"part2": {
		Name: "part2",
		Slots: []Slot{
			{KindPower, 0},
			{KindPower, 1},
			{KindPrimes, 2},
			{KindPrimes, 3},
			{KindExponential, 4},
			{KindExponential, 5},
		},
		Last: Slot{KindLED, 6},
	},
}

// LookupLayout returns the layout with the given name.
func LookupLayout(name string) (Layout, error) {
	l, ok := layouts[name]
	if !ok {
		return Layout{}, fmt.Errorf("unknown layout %q (want one of %s)", name, strings.Join(LayoutNames(), ", "))
	}
	return l, nil
}

// LayoutNames lists the known layouts.
func LayoutNames() []string {
	names := make([]string, 0, len(layouts))
	for n := range layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every display task addresses an existing segment and
// that no two display tasks share one.
func (l Layout) Validate(d board.Display) error {
	seen := make(map[int]Kind)
	for _, s := range append(slices.Clone(l.Slots), l.Last) {
		if s.Kind == KindLED {
			continue
		}
		if err := board.CheckSegment(d, s.Seg); err != nil {
			return fmt.Errorf("layout %s: %s task: %w", l.Name, s.Kind, err)
		}
		if other, dup := seen[s.Seg]; dup {
			return fmt.Errorf("layout %s: %s and %s tasks share segment %d", l.Name, other, s.Kind, s.Seg)
		}
		seen[s.Seg] = s.Kind
	}
	return nil
}

// Spawn validates the layout and spawns every slot in order. It returns the
// entry and argument the caller should run as the last task.
func (l Layout) Spawn(s Spawner, e *Env) (sched.Entry, int, error) {
	if err := l.Validate(e.Display); err != nil {
		return nil, 0, err
	}
	for _, slot := range l.Slots {
		entry, err := e.Entry(slot.Kind)
		if err != nil {
			return nil, 0, err
		}
		id, err := s.Spawn(entry, slot.Seg)
		if err != nil {
			return nil, 0, fmt.Errorf("layout %s: %w", l.Name, err)
		}
		e.logger().Debug("spawned", zap.String("kind", string(slot.Kind)),
			zap.Int("segment", slot.Seg), zap.Uint64("task_id", uint64(id)))
	}
	last, err := e.Entry(l.Last.Kind)
	if err != nil {
		return nil, 0, err
	}
	return last, l.Last.Seg, nil
}

// Boot shows the banner for splashUS microseconds, clears the display and
// switches the LED on.
func (e *Env) Boot(banner string, splashUS uint32) error {
	if err := e.Display.Puts(banner); err != nil {
		return err
	}
	e.Timer.WaitMicroseconds(splashUS)
	if err := e.Display.Clear(); err != nil {
		return err
	}
	e.LED.Init()
	e.LED.Toggle()
	return nil
}
