package ramp

import (
	"math"
	"time"

	"lt8722-go/x/mathx"
)

// Step applies the next ramp value.
type Step func(v float64)

// Tick waits for d and reports whether to continue (false => cancelled).
type Tick func(d time.Duration) bool

// Steps returns the number of fixed increments of size step needed to cover
// from..to. A trailing partial increment counts as one step. Non-finite
// inputs give 0.
func Steps(from, to, step float64) int {
	if !(step > 0) || from == to {
		return 0
	}
	n := math.Abs(to-from) / step
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	// Absorb float noise such as 1.25/0.01 = 125.00000000000001.
	return int(math.Ceil(n - 1e-9))
}

// Linear walks from 'from' to 'to' in increments of 'step', calling set for
// each value and then tick with total/steps. The last value is exactly 'to'.
// step<=0 or from==to snaps to 'to'. It returns the number of values set.
func Linear(from, to, step float64, total time.Duration, tick Tick, set Step) int {
	n := Steps(from, to, step)
	if n == 0 {
		set(to)
		return 1
	}
	dir := 1.0
	if from >= to {
		dir = -1
	}
	stepDur := total / time.Duration(n)

	for i := 1; i <= n; i++ {
		v := to
		if i < n {
			v = mathx.Clamp(from+dir*step*float64(i), from, to)
		}
		set(v)
		if !tick(stepDur) {
			return i
		}
	}
	return n
}
