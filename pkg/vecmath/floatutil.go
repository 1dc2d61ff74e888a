package vecmath

import (
	"math"
)

// Gamma bounds the relative rounding error accumulated over n floating
// point operations, per the standard conservative-error-bound formula.
func Gamma(n int) Float {
	nm := Float(n) * 0.5 * Epsilon
	return nm / (1 - nm)
}

// NextFloat returns the smallest representable float strictly greater
// than f, by stepping its bit pattern one unit (up in magnitude for
// f >= 0, down in magnitude for f < 0).
func NextFloat(f Float) Float {
	if math.IsInf(f, 1) {
		return f
	}
	if f == 0 {
		f = 0
	}
	bits := math.Float64bits(f)
	if f >= 0 {
		bits++
	} else {
		bits--
	}
	return math.Float64frombits(bits)
}

// PreviousFloat is the mirror image of NextFloat.
func PreviousFloat(f Float) Float {
	if math.IsInf(f, -1) {
		return f
	}
	if f == 0 {
		f = math.Copysign(0, -1)
	}
	bits := math.Float64bits(f)
	if f <= 0 {
		bits++
	} else {
		bits--
	}
	return math.Float64frombits(bits)
}

// OffsetRay nudges a ray origin away from the surface it was computed on,
// in the direction of normal (or its negation, for transmitted rays),
// by bit-stepping each coordinate rather than adding a fixed epsilon.
// errorBound is the conservative positional error carried by the hit.
func OffsetRay(origin, normal, errorBound Vec3, isReflect bool) Vec3 {
	offsetVal := normal.Abs().Dot(errorBound)
	offset := normal.Scale(offsetVal)
	if !isReflect {
		offset = offset.Negate()
	}

	result := origin.Add(offset)
	result.X = stepAway(result.X, offset.X)
	result.Y = stepAway(result.Y, offset.Y)
	result.Z = stepAway(result.Z, offset.Z)
	return result
}

func stepAway(v, offsetComponent Float) Float {
	if offsetComponent > 0 {
		return NextFloat(v)
	}
	if offsetComponent < 0 {
		return PreviousFloat(v)
	}
	return v
}
