package vecmath

// Vec2 holds UV coordinates.
type Vec2 struct {
	X, Y Float
}

func NewVec2(x, y Float) Vec2 { return Vec2{x, y} }
