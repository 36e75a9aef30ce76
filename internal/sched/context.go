package sched

// Context is the saved execution point of a task.
//
// Every task stream runs on its own goroutine, but only the one holding the
// baton executes. Saving a context parks the goroutine on its resume channel;
// restoring it hands the baton over through that channel, or starts the
// goroutine when the task has never run.
type Context struct {
	resume  chan struct{}
	started bool
	saves   uint64
}

func newContext() Context {
	return Context{resume: make(chan struct{})}
}

// save parks the calling goroutine until restore is called on the same context.
func (c *Context) save() {
	c.saves++
	<-c.resume
}

// restore wakes the goroutine parked in save. The receiver must already be
// parked or about to park; the send blocks until it is.
func (c *Context) restore() {
	c.resume <- struct{}{}
}
