// internal/sched/scheduler.go

package sched

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/inhies/go-bytesize"
	"go.uber.org/zap"
)

var (
	// ErrAlreadyRunning is returned by Run while a previous Run has not returned.
	ErrAlreadyRunning = errors.New("scheduler already running")
	// ErrNilEntry is returned when a task is created without an entry function.
	ErrNilEntry = errors.New("nil task entry")
)

// Config sizes the stacks handed to spawned tasks.
type Config struct {
	StackSize   bytesize.ByteSize // size of every task stack
	StackBudget bytesize.ByteSize // total memory available for task stacks
}

// DefaultConfig returns 4KB stacks out of a 64KB budget.
func DefaultConfig() Config {
	return Config{
		StackSize:   4 * bytesize.KB,
		StackBudget: 64 * bytesize.KB,
	}
}

// haltSignal unwinds a task's stack when the scheduler is halted.
type haltSignal struct{}

// Scheduler runs tasks cooperatively in round-robin order.
//
// Exactly one task executes at any instant. A task keeps the core until it
// calls Yield; there is no preemption. Spawn and Yield must only be called
// from the running task, or from the caller before Run.
type Scheduler struct {
	pool      *StackPool
	queue     *RunQueue
	tasks     map[TaskID]*Task // all tasks by ID, terminated ones included
	current   *Task            // nil outside Run
	nextID    TaskID
	switches  uint64 // number of dispatches so far
	running   bool
	halted    bool
	ctx       context.Context
	done      chan struct{} // closed once the run queue drains
	logger    *zap.Logger
	observers []func(StatusEvent)

	// logging-related
	csvFile   *os.File
	csvWriter *csv.Writer
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for scheduler events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithObserver registers fn to be called synchronously on every status event.
// fn runs on the current task's stream and must not call Spawn or Yield.
func WithObserver(fn func(StatusEvent)) Option {
	return func(s *Scheduler) { s.observers = append(s.observers, fn) }
}

// New creates a Scheduler with an empty run queue.
func New(cfg Config, opts ...Option) (*Scheduler, error) {
	pool, err := NewStackPool(cfg.StackSize, cfg.StackBudget)
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		pool:   pool,
		queue:  NewRunQueue(),
		tasks:  make(map[TaskID]*Task),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EnableCSVLogging opens the given file path for CSV logging of events.
// Must be called before Run().
func (s *Scheduler) EnableCSVLogging(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)

	// write header
	if err := w.Write([]string{"timestamp", "switches", "event", "task_id", "arg"}); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	s.csvFile = f
	s.csvWriter = w
	return nil
}

// Close flushes and closes the CSV trace, if any.
func (s *Scheduler) Close() error {
	if s.csvFile == nil {
		return nil
	}
	s.csvWriter.Flush()
	err := errors.Join(s.csvWriter.Error(), s.csvFile.Close())
	s.csvFile, s.csvWriter = nil, nil
	return err
}

// Spawn creates a task that will run entry(arg) and appends it to the tail of
// the run queue. It returns immediately; the task first runs when the round
// robin reaches it. Failing to allocate a stack is reported and not retried.
func (s *Scheduler) Spawn(entry Entry, arg int) (TaskID, error) {
	if entry == nil {
		return 0, ErrNilEntry
	}
	stack, err := s.pool.Alloc()
	if err != nil {
		s.logger.Error("spawn failed", zap.Int("arg", arg), zap.Error(err))
		return 0, fmt.Errorf("spawn task with arg %d: %w", arg, err)
	}

	s.nextID++
	t := newTask(s.nextID, entry, arg, stack)
	t.state = StateReady
	s.queue.Push(t)
	s.tasks[t.ID] = t
	s.emit(StatusSpawn, t)
	return t.ID, nil
}

// Run turns the calling goroutine into the last task of the run queue, running
// entry(arg) on the caller's own stack. The first scheduling event enters the
// head of the queue; the caller's entry runs once the round robin comes back.
//
// Run returns once every task has terminated. When ctx is cancelled each task
// unwinds at its next yield point and Run returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context, entry Entry, arg int) error {
	if entry == nil {
		return ErrNilEntry
	}
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true
	s.halted = false
	s.ctx = ctx
	s.done = make(chan struct{})

	s.nextID++
	root := newTask(s.nextID, entry, arg, nil)
	root.root = true
	root.ctx.started = true
	s.queue.Push(root)
	s.tasks[root.ID] = root
	s.emit(StatusSpawn, root)

	s.logger.Info("scheduler started",
		zap.Int("tasks", s.queue.Len()),
		zap.Stringer("stack_size", bytesize.New(float64(s.pool.StackSize()))))

	s.current = root
	root.state = StateRunning
	s.emit(StatusDispatch, root)
	s.execute(root)

	// every other task has to drain before the caller gets its flow back
	<-s.done
	s.running = false

	s.logger.Info("scheduler stopped", zap.Uint64("switches", s.switches), zap.Bool("halted", s.halted))
	if s.halted {
		return ctx.Err()
	}
	return nil
}

// Yield suspends the running task and resumes the next one in round-robin
// order. It returns once the caller is scheduled again. With a single task in
// the queue it returns immediately. Outside Run it is a no-op.
func (s *Scheduler) Yield() {
	cur := s.current
	if cur == nil {
		return
	}
	s.checkHalt()

	next := s.queue.After(cur.ID)
	if next == nil || next == cur {
		return
	}
	s.emit(StatusYield, cur)
	cur.state = StateReady
	s.switchTo(cur, next)
	s.checkHalt()
}

// Current returns the ID of the running task, or 0 outside Run.
func (s *Scheduler) Current() TaskID {
	if s.current == nil {
		return 0
	}
	return s.current.ID
}

// Len returns the number of tasks in the run queue.
func (s *Scheduler) Len() int { return s.queue.Len() }

// Queue returns the IDs in the run queue in round-robin order.
func (s *Scheduler) Queue() []TaskID { return s.queue.IDs() }

// Switches returns the number of dispatches performed so far.
func (s *Scheduler) Switches() uint64 { return s.switches }

// Stacks returns the pool that owns the task stacks.
func (s *Scheduler) Stacks() *StackPool { return s.pool }

// State returns the lifecycle state of the task with the given ID.
func (s *Scheduler) State(id TaskID) (State, bool) {
	t, ok := s.tasks[id]
	if !ok {
		return 0, false
	}
	return t.state, true
}

// Task returns the task with the given ID.
func (s *Scheduler) Task(id TaskID) (*Task, bool) {
	t, ok := s.tasks[id]
	return t, ok
}

// switchTo saves the context of cur and restores the one of next.
func (s *Scheduler) switchTo(cur, next *Task) {
	if cur.stack != nil && !cur.stack.Intact() {
		panic(fmt.Sprintf("sched: task %d stack overflow", cur.ID))
	}
	s.dispatch(next)
	// cur must not touch scheduler state until it is resumed
	cur.ctx.save()
}

// dispatch hands the core to next. Nothing may be read or written by the
// caller after dispatch returns, since next is already running.
func (s *Scheduler) dispatch(next *Task) {
	if next.state == StateTerminated {
		panic(fmt.Sprintf("sched: dispatch of terminated task %d", next.ID))
	}
	s.switches++
	s.current = next
	next.state = StateRunning
	s.emit(StatusDispatch, next)

	if !next.ctx.started {
		next.ctx.started = true
		go s.execute(next)
		return
	}
	next.ctx.restore()
}

// execute runs a task's entry on the current goroutine and then terminates it.
func (s *Scheduler) execute(t *Task) {
	halted := s.runEntry(t)
	s.exit(t, halted)
}

func (s *Scheduler) runEntry(t *Task) (halted bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(haltSignal); !ok {
				panic(r)
			}
			halted = true
		}
	}()

	if t.root {
		// bootstrap: the caller's stack stands in as the saved context while
		// the spawned tasks get their first slice
		s.Yield()
	} else {
		s.checkHalt()
	}
	t.entry(t.arg)
	return false
}

// exit moves t to Terminated, evicts it from the run queue, reclaims its stack
// and hands the core to the task that would have followed it.
func (s *Scheduler) exit(t *Task, halted bool) {
	next := s.queue.After(t.ID)
	s.queue.Remove(t.ID)
	t.state = StateTerminated
	s.pool.Release(t.stack)
	t.stack = nil

	kind := StatusTerminate
	if halted {
		kind = StatusHalt
		s.halted = true
	}
	s.emit(kind, t)

	if s.queue.Empty() {
		s.current = nil
		close(s.done)
		return
	}
	s.dispatch(next)
}

func (s *Scheduler) checkHalt() {
	if s.ctx != nil && s.ctx.Err() != nil {
		panic(haltSignal{})
	}
}

func (s *Scheduler) emit(kind StatusKind, t *Task) {
	ev := StatusEvent{
		Time:     time.Now(),
		Kind:     kind,
		TaskID:   t.ID,
		Arg:      t.arg,
		Switches: s.switches,
	}

	switch kind {
	case StatusSpawn, StatusTerminate, StatusHalt:
		s.logger.Debug("task "+kind.String(),
			zap.Uint64("task_id", uint64(t.ID)),
			zap.Int("arg", t.arg),
			zap.Stringer("state", t.state))
	}

	for _, fn := range s.observers {
		fn(ev)
	}

	// CSV output
	if s.csvWriter != nil {
		rec := []string{
			ev.Time.Format(time.RFC3339Nano),
			strconv.FormatUint(ev.Switches, 10),
			ev.Kind.String(),
			strconv.FormatUint(uint64(ev.TaskID), 10),
			strconv.Itoa(ev.Arg),
		}
		s.csvWriter.Write(rec)
		s.csvWriter.Flush()
	}
}
