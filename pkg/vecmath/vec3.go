// Package vecmath provides the vector, ray and bounding-box primitives
// shared by every other package in the renderer.
package vecmath

import "math"

// Float is the module's working precision.
type Float = float64

// Epsilon is the machine epsilon used by error-bound calculations.
const Epsilon Float = 2.220446049250313e-16

// Vec3 is a 3-component vector, used interchangeably as point, direction
// and colour depending on context.
type Vec3 struct {
	X, Y, Z Float
}

func NewVec3(x, y, z Float) Vec3 { return Vec3{x, y, z} }

func Zero() Vec3 { return Vec3{} }
func One() Vec3  { return Vec3{1, 1, 1} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Negate() Vec3         { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Scale(s Float) Vec3   { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) MultiplyVec(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vec3) DivideVec(o Vec3) Vec3   { return Vec3{v.X / o.X, v.Y / o.Y, v.Z / o.Z} }

func (v Vec3) Dot(o Vec3) Float { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) MagSq() Float { return v.Dot(v) }
func (v Vec3) Length() Float { return math.Sqrt(v.MagSq()) }

func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

func (v Vec3) IsZero() bool { return v == Vec3{} }

func (v Vec3) ComponentMax() Float {
	m := v.X
	if v.Y > m {
		m = v.Y
	}
	if v.Z > m {
		m = v.Z
	}
	return m
}

func (v Vec3) Abs() Vec3 { return Vec3{math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)} }

func (v Vec3) Clamp(lo, hi Float) Vec3 {
	clamp := func(x Float) Float {
		if x < lo {
			return lo
		}
		if x > hi {
			return hi
		}
		return x
	}
	return Vec3{clamp(v.X), clamp(v.Y), clamp(v.Z)}
}

// Luminance computes perceptual luminance using Rec.709 weights.
func (v Vec3) Luminance() Float { return 0.2126*v.X + 0.7152*v.Y + 0.0722*v.Z }

func (v Vec3) GammaCorrect(gamma Float) Vec3 {
	inv := 1 / gamma
	return Vec3{math.Pow(v.X, inv), math.Pow(v.Y, inv), math.Pow(v.Z, inv)}
}

func (v Vec3) IsFinite() bool {
	return !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

func (v Vec3) ContainsNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

// Reflect mirrors v about the normal n (n need not be unit length for the
// formula but in practice always is here).
func (v Vec3) Reflect(n Vec3) Vec3 {
	return v.Sub(n.Scale(2 * v.Dot(n)))
}

// MaxAbsAxis returns which axis has the largest absolute component.
func (v Vec3) MaxAbsAxis() int {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	if ax > ay && ax > az {
		return 0
	}
	if ay > az {
		return 1
	}
	return 2
}

func (v Vec3) Component(axis int) Float {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func MinVec(a, b Vec3) Vec3 {
	return Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

func MaxVec(a, b Vec3) Vec3 {
	return Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}
