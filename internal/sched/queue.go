package sched

import (
	"github.com/emirpasic/gods/trees/redblacktree"
)

// RunQueue holds the tasks eligible to run, ordered by spawn order.
// Task IDs grow monotonically, so ordering the tree by ID puts a freshly
// spawned task at the tail.
type RunQueue struct {
	rbt *redblacktree.Tree
}

// NewRunQueue creates an empty run queue.
func NewRunQueue() *RunQueue {
	return &RunQueue{rbt: redblacktree.NewWith(cmp)}
}

// Push appends a task. Its ID must be greater than every ID already queued.
func (q *RunQueue) Push(t *Task) {
	q.rbt.Put(t.ID, t)
}

// Remove evicts the task with the given ID, if present.
func (q *RunQueue) Remove(id TaskID) {
	q.rbt.Remove(id)
}

// Head returns the first task in spawn order, or nil when the queue is empty.
func (q *RunQueue) Head() *Task {
	node := q.rbt.Left()
	if node == nil {
		return nil
	}
	return node.Value.(*Task)
}

// After returns the task following id in round-robin order, wrapping from the
// tail to the head. id does not need to be queued. Returns nil when the queue
// is empty.
func (q *RunQueue) After(id TaskID) *Task {
	if node, found := q.rbt.Ceiling(id + 1); found {
		return node.Value.(*Task)
	}
	return q.Head()
}

// Get returns the queued task with the given ID.
func (q *RunQueue) Get(id TaskID) (*Task, bool) {
	v, found := q.rbt.Get(id)
	if !found {
		return nil, false
	}
	return v.(*Task), true
}

// Len returns the number of queued tasks.
func (q *RunQueue) Len() int { return q.rbt.Size() }

// Empty reports whether no task is queued.
func (q *RunQueue) Empty() bool { return q.rbt.Empty() }

// IDs returns the queued task IDs in round-robin order starting at the head.
func (q *RunQueue) IDs() []TaskID {
	keys := q.rbt.Keys()
	ids := make([]TaskID, len(keys))
	for i, k := range keys {
		ids[i] = k.(TaskID)
	}
	return ids
}

// cmp orders run queue keys by task ID.
func cmp(a, b any) int {
	ka, kb := a.(TaskID), b.(TaskID)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	default:
		return 0
	}
}
