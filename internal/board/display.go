// Package board holds the hardware collaborators the demo tasks talk to:
// a segmented character display, an LED and a busy-wait timer.
package board

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-colorable"
)

// ErrInvalidSegment is returned for a segment outside [0, Segments()).
var ErrInvalidSegment = errors.New("invalid display segment")

// Display renders integer values into numbered segments of a shared screen.
// Tasks are expected to own distinct segments; the display does no locking.
type Display interface {
	Print(seg, value int) error
	Puts(s string) error
	Clear() error
	Segments() int
}

// CheckSegment reports whether seg addresses a segment of d.
func CheckSegment(d Display, seg int) error {
	if seg < 0 || seg >= d.Segments() {
		return fmt.Errorf("segment %d of %d: %w", seg, d.Segments(), ErrInvalidSegment)
	}
	return nil
}

// SegmentWidth is the number of characters each console segment shows.
const SegmentWidth = 8

// Console draws the segments as a single status line on a terminal.
type Console struct {
	w        io.Writer
	segments []string
	banner   string
}

// NewConsole creates a console display with n segments writing to stdout.
func NewConsole(n int) *Console {
	return NewConsoleWriter(colorable.NewColorableStdout(), n)
}

// NewConsoleWriter creates a console display with n segments writing to w.
func NewConsoleWriter(w io.Writer, n int) *Console {
	return &Console{w: w, segments: make([]string, n)}
}

func (c *Console) Segments() int { return len(c.segments) }

func (c *Console) Print(seg, value int) error {
	if err := CheckSegment(c, seg); err != nil {
		return err
	}
	s := strconv.Itoa(value)
	if len(s) > SegmentWidth {
		// keep the least significant digits, like a fixed-width LCD field
		s = s[len(s)-SegmentWidth:]
	}
	c.segments[seg] = s
	return c.redraw()
}

func (c *Console) Puts(s string) error {
	c.banner = s
	return c.redraw()
}

func (c *Console) Clear() error {
	clear(c.segments)
	c.banner = ""
	return c.redraw()
}

// redraw clears the current terminal line and paints it again.
func (c *Console) redraw() error {
	var b strings.Builder
	b.WriteString("\r\x1b[2K")
	if c.banner != "" {
		b.WriteString(c.banner)
		b.WriteString(" ")
	}
	for i, s := range c.segments {
		if i > 0 {
			b.WriteString("|")
		}
		fmt.Fprintf(&b, "%*s", SegmentWidth, s)
	}
	_, err := io.WriteString(c.w, b.String())
	return err
}

// Write is one recorded call on a Memory display.
type Write struct {
	Seg   int
	Value int
}

// Memory is a display that keeps everything it was asked to show.
type Memory struct {
	n       int
	Writes  []Write // every Print, in call order
	Banners []string
	Clears  int
}

// NewMemory creates an in-memory display with n segments.
func NewMemory(n int) *Memory {
	return &Memory{n: n}
}

func (m *Memory) Segments() int { return m.n }

func (m *Memory) Print(seg, value int) error {
	if err := CheckSegment(m, seg); err != nil {
		return err
	}
	m.Writes = append(m.Writes, Write{Seg: seg, Value: value})
	return nil
}

func (m *Memory) Puts(s string) error {
	m.Banners = append(m.Banners, s)
	return nil
}

func (m *Memory) Clear() error {
	m.Clears++
	return nil
}

// Values returns the values printed to seg, in order.
func (m *Memory) Values(seg int) []int {
	var out []int
	for _, w := range m.Writes {
		if w.Seg == seg {
			out = append(out, w.Value)
		}
	}
	return out
}
