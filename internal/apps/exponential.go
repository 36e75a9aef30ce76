package apps

import (
	"math"

	"go.uber.org/zap"
)

// ExpSteps is the number of values Exponential shows before clearing the
// display and starting over.
const ExpSteps = 10

const (
	expScale         = 1_000_000 // fixed point: six decimal digits
	expFractionScale = 100       // the fraction part keeps two digits
)

// Exp is e^x split into integer and fractional parts. Fraction holds
// hundredths.
type Exp struct {
	Int      int
	Fraction int
}

// IExp approximates e^x with a fixed-point Taylor series. Results that do not
// fit saturate to math.MaxInt32 with a zero fraction.
func IExp(x int) Exp {
	neg := x < 0
	if neg {
		x = -x
	}

	var (
		sum  int64 = expScale
		term int64 = expScale
	)
	for k := 1; term > 0; k++ {
		if term > math.MaxInt64/int64(x+1) {
			return Exp{Int: math.MaxInt32}
		}
		term = term * int64(x) / int64(k)
		sum += term
		if sum/expScale > math.MaxInt32 {
			return Exp{Int: math.MaxInt32}
		}
	}

	if neg {
		sum = expScale * expScale / sum
	}
	return Exp{
		Int:      int(sum / expScale),
		Fraction: int(sum % expScale / (expScale / expFractionScale)),
	}
}

// Exponential shows e^0 .. e^(ExpSteps-1) on segment seg, yielding after each
// value, then clears the display and restarts. Even segments show the integer
// part, odd segments the fraction.
func (e *Env) Exponential(seg int) {
	for {
		for i := 0; i < ExpSteps; i++ {
			v := IExp(i)
			value := v.Int
			if seg%2 != 0 {
				value = v.Fraction
			}
			if !e.show("exponential", seg, value) {
				return
			}
			e.Sched.Yield()
		}
		if err := e.Display.Clear(); err != nil {
			e.logger().Warn("display clear failed", zap.Int("segment", seg), zap.Error(err))
		}
	}
}
