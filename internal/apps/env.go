// Package apps contains the demo tasks: generators that print to a display
// segment, busy-wait and yield, plus an LED blinker.
package apps

import (
	"go.uber.org/zap"

	"tinythreads/internal/board"
)

// Yielder is the only scheduler operation a task uses.
type Yielder interface {
	Yield()
}

// Env is what every demo task is wired to. Its task methods have the
// signature of a scheduler entry and take their display segment as argument.
type Env struct {
	Sched   Yielder
	Display board.Display
	Timer   board.Delayer
	LED     board.LED
	DelayUS uint32 // pause after each displayed value
	Logger  *zap.Logger
}

func (e *Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// show prints value and pauses without yielding. A display error ends the
// calling task, so it is reported as false.
func (e *Env) show(task string, seg, value int) bool {
	if err := e.Display.Print(seg, value); err != nil {
		e.logger().Error("display write failed, stopping task",
			zap.String("task", task), zap.Int("segment", seg), zap.Error(err))
		return false
	}
	e.Timer.WaitMicroseconds(e.DelayUS)
	return true
}
