package prim

import (
	"math"
	"testing"

	"github.com/jmoss/photontrace/pkg/vecmath"
)

func TestTriangleIntersectHit(t *testing.T) {
	tri := NewTriangle(
		Vec3{X: -1, Y: -1, Z: 0},
		Vec3{X: 1, Y: -1, Z: 0},
		Vec3{X: 0, Y: 1, Z: 0},
		fakeMaterial{},
	)
	ray := vecmath.NewRay(Vec3{X: 0, Y: 0, Z: -5}, Vec3{X: 0, Y: 0, Z: 1}, 0)
	si, ok := tri.Intersect(ray, 0.001, math.MaxFloat64)
	if !ok {
		t.Fatalf("expected hit")
	}
	if math.Abs(si.Hit.T-5) > 1e-6 {
		t.Errorf("t = %v, want 5", si.Hit.T)
	}
}

func TestTriangleIntersectMissOutsideEdges(t *testing.T) {
	tri := NewTriangle(
		Vec3{X: -1, Y: -1, Z: 0},
		Vec3{X: 1, Y: -1, Z: 0},
		Vec3{X: 0, Y: 1, Z: 0},
		fakeMaterial{},
	)
	ray := vecmath.NewRay(Vec3{X: 5, Y: 5, Z: -5}, Vec3{X: 0, Y: 0, Z: 1}, 0)
	if _, ok := tri.Intersect(ray, 0.001, math.MaxFloat64); ok {
		t.Fatalf("expected miss")
	}
}

func TestTriangleSharedEdgeWatertight(t *testing.T) {
	// Two triangles sharing an edge along x=0; a ray aimed exactly at
	// the shared edge must hit exactly one of them, never neither.
	left := NewTriangle(
		Vec3{X: -1, Y: -1, Z: 0}, Vec3{X: 0, Y: -1, Z: 0}, Vec3{X: 0, Y: 1, Z: 0},
		fakeMaterial{},
	)
	right := NewTriangle(
		Vec3{X: 0, Y: -1, Z: 0}, Vec3{X: 1, Y: -1, Z: 0}, Vec3{X: 0, Y: 1, Z: 0},
		fakeMaterial{},
	)
	ray := vecmath.NewRay(Vec3{X: 0, Y: 0, Z: -5}, Vec3{X: 0, Y: 0, Z: 1}, 0)
	_, hitLeft := left.Intersect(ray, 0.001, math.MaxFloat64)
	_, hitRight := right.Intersect(ray, 0.001, math.MaxFloat64)
	if hitLeft == hitRight {
		t.Fatalf("expected exactly one triangle to report a hit on the shared edge, got left=%v right=%v", hitLeft, hitRight)
	}
}

func TestTriangleArea(t *testing.T) {
	tri := NewTriangle(
		Vec3{X: 0, Y: 0, Z: 0}, Vec3{X: 2, Y: 0, Z: 0}, Vec3{X: 0, Y: 2, Z: 0},
		fakeMaterial{},
	)
	if math.Abs(tri.Area()-2) > 1e-9 {
		t.Errorf("Area = %v, want 2", tri.Area())
	}
}
