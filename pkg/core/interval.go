package core

import "math"

// Interval is a closed range of real numbers. Min <= Max is not enforced.
type Interval struct {
	Min, Max float64
}

var (
	// Empty contains nothing
	Empty = Interval{Min: math.Inf(1), Max: math.Inf(-1)}
	// Universe contains every real number
	Universe = Interval{Min: math.Inf(-1), Max: math.Inf(1)}
)

// NewInterval creates an interval [min, max]
func NewInterval(minVal, maxVal float64) Interval {
	return Interval{Min: minVal, Max: maxVal}
}

// Contains reports whether min <= x <= max
func (i Interval) Contains(x float64) bool {
	return i.Min <= x && x <= i.Max
}

// Surrounds reports whether min < x < max
func (i Interval) Surrounds(x float64) bool {
	return i.Min < x && x < i.Max
}

// Clamp saturates x into the interval
func (i Interval) Clamp(x float64) float64 {
	if x < i.Min {
		return i.Min
	}
	if x > i.Max {
		return i.Max
	}
	return x
}

// WithMax returns a copy of the interval with a new upper bound
func (i Interval) WithMax(maxVal float64) Interval {
	return Interval{Min: i.Min, Max: maxVal}
}
