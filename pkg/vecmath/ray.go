package vecmath

// Ray carries, in addition to origin/direction, the precomputed quantities
// the watertight triangle test and the slab AABB test need: the
// componentwise inverse direction, the shear transform that aligns the
// dominant axis with z, and the shutter time for motion-aware shapes.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	DInverse  Vec3
	Shear     Vec3
	Time      Float
}

// NewRay normalizes direction and precomputes DInverse and Shear following
// the dominant-axis swap used by the watertight triangle intersector.
func NewRay(origin, direction Vec3, time Float) Ray {
	direction = direction.Normalize()

	maxAxis := direction.MaxAbsAxis()

	swapped := direction
	if maxAxis == 0 || maxAxis == 1 {
		swapped.X, swapped.Z = swapped.Z, swapped.X
	}

	shear := Vec3{
		X: -swapped.X / swapped.Z,
		Y: -swapped.Y / swapped.Z,
		Z: 1 / swapped.Z,
	}

	return Ray{
		Origin:    origin,
		Direction: direction,
		DInverse:  Vec3{1 / direction.X, 1 / direction.Y, 1 / direction.Z},
		Shear:     shear,
		Time:      time,
	}
}

func (r Ray) At(t Float) Vec3 { return r.Origin.Add(r.Direction.Scale(t)) }
