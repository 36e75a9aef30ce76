package apps

// IsPrime reports whether i is prime by trial division with odd divisors.
func IsPrime(i int) bool {
	if i <= 1 {
		return false
	}
	if i%2 == 0 && i > 2 {
		return false
	}
	for j := 3; j < i/2; j += 2 {
		if i%j == 0 {
			return false
		}
	}
	return true
}

// Primes displays every prime in increasing order on segment seg, yielding
// after each one.
func (e *Env) Primes(seg int) {
	for n := 0; ; n++ {
		if !IsPrime(n) {
			continue
		}
		if !e.show("primes", seg, n) {
			return
		}
		e.Sched.Yield()
	}
}
