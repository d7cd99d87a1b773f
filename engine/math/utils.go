package math

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/constraints"
)

// Clamp returns f limited to the range [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// WrapDegrees maps an angle in degrees into [0, 360).
func WrapDegrees(angle float32) float32 {
	angle = math32.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	return angle
}
