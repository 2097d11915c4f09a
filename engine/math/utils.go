package math

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/constraints"
)

const (
	Pi     float32 = math32.Pi
	HalfPi float32 = math32.Pi / 2
	TwoPi  float32 = 2 * math32.Pi
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// WrapAngle maps an angle in radians to [0, 2π).
func WrapAngle(a float32) float32 {
	a = math32.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	return a
}

func DegToRad(d float32) float32 {
	return d * Pi / 180
}

func RadToDeg(r float32) float32 {
	return r * 180 / Pi
}
