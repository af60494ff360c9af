package sim

import (
	"math"
	"strconv"
)

// Time is a point or a duration on the simulated clock.
// Simulated time is unrelated to wall-clock time; units are whatever the
// model author chooses.
type Time float64

// Infinity is the time advance of a passive state and the next event time
// of a component that will never fire on its own.
var Infinity = Time(math.Inf(1))

// IsInfinite reports whether t is the designated infinite time.
func (t Time) IsInfinite() bool {
	return math.IsInf(float64(t), 1)
}

// valid reports whether t is usable as a time advance: nonnegative and not NaN.
func (t Time) valid() bool {
	return !math.IsNaN(float64(t)) && t >= 0
}

func (t Time) String() string {
	if t.IsInfinite() {
		return "inf"
	}
	return strconv.FormatFloat(float64(t), 'g', -1, 64)
}
