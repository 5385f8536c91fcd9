package value

import "math"

// EvalSettings is passed by value to every operator and function call.
type EvalSettings struct {
	Base    int
	Degrees bool
	// Zero is the magnitude below which a real counts as zero.
	Zero float64
}

func DefaultSettings() EvalSettings {
	return EvalSettings{Base: 10, Zero: 1e-10}
}

// AngleIn converts an angle argument to radians.
func (s EvalSettings) AngleIn(a float64) float64 {
	if s.Degrees {
		return a * math.Pi / 180
	}
	return a
}

// AngleOut converts a radian result to the configured unit.
func (s EvalSettings) AngleOut(a float64) float64 {
	if s.Degrees {
		return a * 180 / math.Pi
	}
	return a
}

// IsZero reports whether f is within the zero threshold.
func (s EvalSettings) IsZero(f float64) bool {
	return math.Abs(f) <= s.Zero
}
