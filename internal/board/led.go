package board

import (
	"fmt"
	"io"
)

// LED is a single binary output.
type LED interface {
	Init()
	Toggle()
	On() bool
}

// GPIO is an LED driven through a simulated output pin. When a writer is set,
// every transition is traced to it.
type GPIO struct {
	Pin     int
	on      bool
	toggles uint64
	w       io.Writer
}

// NewGPIO creates an LED on the given pin, tracing to w when w is not nil.
func NewGPIO(pin int, w io.Writer) *GPIO {
	return &GPIO{Pin: pin, w: w}
}

// Init drives the pin low.
func (g *GPIO) Init() {
	g.on = false
	g.toggles = 0
}

// Toggle flips the output.
func (g *GPIO) Toggle() {
	g.on = !g.on
	g.toggles++
	if g.w != nil {
		fmt.Fprintf(g.w, "gpio%d=%d\n", g.Pin, btoi(g.on))
	}
}

func (g *GPIO) On() bool { return g.on }

// Toggles returns how many times the output flipped since Init.
func (g *GPIO) Toggles() uint64 { return g.toggles }

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
