package math32

import (
	"github.com/chewxy/math32"
)

// Number is the set of scalar types the generic helpers accept.
type Number interface {
	float32 | int32 | uint32 | int
}

// Min returns the minimum of two values.
func Min[T Number](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two values.
func Max[T Number](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Clamp limits v to [lo, hi].
func Clamp[T Number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Abs returns the absolute value of a float32.
func Abs(a float32) float32 {
	return math32.Abs(a)
}

// Round returns the nearest integer, rounding half away from zero.
func Round(a float32) float32 {
	return math32.Round(a)
}

// Floor returns the greatest integer value less than or equal to a.
func Floor(a float32) float32 {
	return math32.Floor(a)
}

// Sqrt returns the square root of a float32.
func Sqrt(a float32) float32 {
	return math32.Sqrt(a)
}

// IsFinite reports whether a is neither infinite nor NaN.
func IsFinite(a float32) bool {
	return !math32.IsInf(a, 0) && !math32.IsNaN(a)
}

// Inf returns positive infinity if sign >= 0, negative infinity if sign < 0.
func Inf(sign int) float32 {
	return math32.Inf(sign)
}
