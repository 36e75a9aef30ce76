package sched

// TaskID uniquely identifies a task for the lifetime of its scheduler.
type TaskID uint64

// Entry is the function a task runs. It is invoked exactly once, at the task's first dispatch,
// with the integer argument given to Spawn.
type Entry func(arg int)

// State is the lifecycle state of a task.
type State int

const (
	StateCreated State = iota
	StateReady
	StateRunning
	StateTerminated
)

func (st State) String() string {
	switch st {
	case StateCreated:
		return "Created"
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Task represents one cooperatively scheduled unit of execution.
type Task struct {
	ID    TaskID
	entry Entry
	arg   int
	stack *Stack  // nil for the root task, which runs on the caller's stack
	ctx   Context // resume point, touched only by the scheduler
	state State
	root  bool
}

func newTask(id TaskID, entry Entry, arg int, stack *Stack) *Task {
	return &Task{
		ID:    id,
		entry: entry,
		arg:   arg,
		stack: stack,
		ctx:   newContext(),
		state: StateCreated,
	}
}

// Arg returns the argument the task was spawned with.
func (t *Task) Arg() int { return t.arg }

// Stack returns the task's private stack, or nil for the root task.
func (t *Task) Stack() *Stack { return t.stack }

// Suspensions returns how many times the task's context has been saved.
func (t *Task) Suspensions() uint64 { return t.ctx.saves }
