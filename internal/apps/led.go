package apps

// ToggleLED flips the LED and yields, forever. The argument is unused.
func (e *Env) ToggleLED(int) {
	for {
		e.LED.Toggle()
		e.Sched.Yield()
	}
}
