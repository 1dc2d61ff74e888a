package vecmath

import (
	"math"
	"testing"
)

func TestAABBHit(t *testing.T) {
	box := NewAABB(Vec3{-1, -1, -1}, Vec3{1, 1, 1})
	r := NewRay(Vec3{0, 0, -5}, Vec3{0, 0, 1}, 0)
	if !box.Hit(r, 0.001, math.MaxFloat64) {
		t.Fatalf("expected ray to hit box")
	}
}

func TestAABBMiss(t *testing.T) {
	box := NewAABB(Vec3{-1, -1, -1}, Vec3{1, 1, 1})
	r := NewRay(Vec3{5, 5, -5}, Vec3{0, 0, 1}, 0)
	if box.Hit(r, 0.001, math.MaxFloat64) {
		t.Fatalf("expected ray to miss box")
	}
}

func TestAABBDegeneratePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic constructing a degenerate AABB")
		}
	}()
	NewAABB(Vec3{1, 0, 0}, Vec3{0, 1, 1})
}

func TestUnion(t *testing.T) {
	a := NewAABB(Vec3{0, 0, 0}, Vec3{1, 1, 1})
	b := NewAABB(Vec3{2, 2, 2}, Vec3{3, 3, 3})
	u := Union(a, b)
	if u.Min != (Vec3{0, 0, 0}) || u.Max != (Vec3{3, 3, 3}) {
		t.Errorf("Union = %v, want min {0 0 0} max {3 3 3}", u)
	}
}
