package apps

import "math"

// maxSquareBase is the largest n whose square fits in an int.
var maxSquareBase = int(math.Sqrt(float64(math.MaxInt)))

// Square returns n*n, saturating at math.MaxInt.
func Square(n int) int {
	if n < 0 {
		n = -n
	}
	if n > maxSquareBase {
		return math.MaxInt
	}
	return n * n
}

// Power displays the squares 0, 1, 4, 9, ... on segment seg, yielding after
// each one.
func (e *Env) Power(seg int) {
	for n := 0; ; n++ {
		if !e.show("power", seg, Square(n)) {
			return
		}
		e.Sched.Yield()
	}
}
