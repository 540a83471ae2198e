package train

import "math"

// NewEarlyStopping returns a closure that watches a monitored value
// (validation accuracy) once per epoch and reports when training
// should halt.
//
// The baseline is the best value seen so far and moves up on any
// increase. An epoch that fails to beat the baseline by more than
// minDelta counts against the patience; training halts on the epoch
// where the count exceeds it. A patience of zero or less disables
// stopping entirely.
func NewEarlyStopping(minDelta float64, patience int) func(value float64) bool {
	best := math.Inf(-1)
	wait := 0

	return func(value float64) bool {
		if patience <= 0 {
			return false
		}

		if value > best+minDelta {
			wait = 0
		} else {
			wait++
		}
		if value > best {
			best = value
		}
		return wait > patience
	}
}
