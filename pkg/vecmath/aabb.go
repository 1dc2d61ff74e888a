package vecmath

import "fmt"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec3
}

// NewAABB builds an AABB from two corners, panicking on a degenerate box
// whose min exceeds its max on some axis without the two corners being
// identical (a malformed box is a programmer error, not data to route
// around).
func NewAABB(min, max Vec3) AABB {
	degenerate := (min.X > max.X || min.Y > max.Y || min.Z > max.Z) && min != max
	if degenerate {
		panic(fmt.Sprintf("vecmath: degenerate AABB min=%v max=%v", min, max))
	}
	return AABB{Min: min, Max: max}
}

// Hit performs the slab test using the ray's precomputed inverse direction.
func (b AABB) Hit(r Ray, tMin, tMax Float) bool {
	for axis := 0; axis < 3; axis++ {
		invD := r.DInverse.Component(axis)
		t0 := (b.Min.Component(axis) - r.Origin.Component(axis)) * invD
		t1 := (b.Max.Component(axis) - r.Origin.Component(axis)) * invD
		if invD < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax <= tMin {
			return false
		}
	}
	return tMax > max0(tMin)
}

func max0(x Float) Float {
	if x > 0 {
		return x
	}
	return 0
}

func Union(a, b AABB) AABB {
	return AABB{Min: MinVec(a.Min, b.Min), Max: MaxVec(a.Max, b.Max)}
}

func (b AABB) Center() Vec3 { return b.Min.Add(b.Max).Scale(0.5) }
func (b AABB) Size() Vec3   { return b.Max.Sub(b.Min) }

func (b AABB) SurfaceArea() Float {
	d := b.Size()
	return 2 * (d.X*d.Y + d.X*d.Z + d.Y*d.Z)
}

func (b AABB) LongestAxis() int {
	d := b.Size()
	if d.X > d.Y && d.X > d.Z {
		return 0
	}
	if d.Y > d.Z {
		return 1
	}
	return 2
}

// Offset returns, for a point known to lie within b, its fractional
// position along each axis.
func (b AABB) Offset(p Vec3) Vec3 {
	o := p.Sub(b.Min)
	size := b.Size()
	if size.X > 0 {
		o.X /= size.X
	}
	if size.Y > 0 {
		o.Y /= size.Y
	}
	if size.Z > 0 {
		o.Z /= size.Z
	}
	return o
}
