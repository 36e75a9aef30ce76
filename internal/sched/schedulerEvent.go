// internal/sched/schedulerEvent.go

package sched

import (
	"time"
)

// StatusKind represents the type of scheduler event
type StatusKind int

const (
	StatusSpawn StatusKind = iota
	StatusDispatch
	StatusYield
	StatusTerminate
	StatusHalt
)

// StatusEvent is emitted on every scheduler action
type StatusEvent struct {
	Time     time.Time
	Kind     StatusKind
	TaskID   TaskID
	Arg      int
	Switches uint64
}

func (sk StatusKind) String() string {
	switch sk {
	case StatusSpawn:
		return "Spawn"
	case StatusDispatch:
		return "Dispatch"
	case StatusYield:
		return "Yield"
	case StatusTerminate:
		return "Terminate"
	case StatusHalt:
		return "Halt"
	default:
		return "Unknown"
	}
}
