package prim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jmoss/photontrace/pkg/vecmath"
)

// fakeMaterial satisfies the Material contract with inert stubs; these
// tests only exercise geometric intersection, not shading.
type fakeMaterial struct {
	requiresUV bool
	isLight    bool
}

func (m fakeMaterial) RequiresUV() bool { return m.requiresUV }
func (m fakeMaterial) IsLight() bool    { return m.isLight }
func (m fakeMaterial) IsDelta() bool    { return false }
func (m fakeMaterial) ScatterRay(ray *vecmath.Ray, hit Hit, rng *rand.Rand) bool { return true }
func (m fakeMaterial) ScatteringPDF(hit Hit, wo, wi Vec3) Float                  { return 0 }
func (m fakeMaterial) Eval(hit Hit, wo, wi Vec3) Vec3                           { return Vec3{} }
func (m fakeMaterial) EvalOverScatteringPDF(hit Hit, wo, wi Vec3) Vec3          { return Vec3{} }
func (m fakeMaterial) GetEmission(hit Hit, wo Vec3) Vec3                        { return Vec3{} }

func TestSphereIntersectFrontFace(t *testing.T) {
	s := NewSphere(Vec3{X: 0, Y: 0, Z: 0}, 1, fakeMaterial{})
	ray := vecmath.NewRay(Vec3{X: 0, Y: 0, Z: -5}, Vec3{X: 0, Y: 0, Z: 1}, 0)
	si, ok := s.Intersect(ray, 0.001, math.MaxFloat64)
	if !ok {
		t.Fatalf("expected hit")
	}
	if math.Abs(si.Hit.T-4) > 1e-9 {
		t.Errorf("t = %v, want 4", si.Hit.T)
	}
	if !si.Hit.Out {
		t.Errorf("expected Out=true for a ray starting outside the sphere")
	}
	wantNormal := Vec3{X: 0, Y: 0, Z: -1}
	if si.Hit.Normal.Sub(wantNormal).Length() > 1e-9 {
		t.Errorf("normal = %v, want %v", si.Hit.Normal, wantNormal)
	}
}

func TestSphereIntersectMiss(t *testing.T) {
	s := NewSphere(Vec3{}, 1, fakeMaterial{})
	ray := vecmath.NewRay(Vec3{X: 5, Y: 5, Z: -5}, Vec3{X: 0, Y: 0, Z: 1}, 0)
	if _, ok := s.Intersect(ray, 0.001, math.MaxFloat64); ok {
		t.Fatalf("expected miss")
	}
}

func TestSphereIntersectFromInside(t *testing.T) {
	s := NewSphere(Vec3{}, 1, fakeMaterial{})
	ray := vecmath.NewRay(Vec3{}, Vec3{X: 1, Y: 0, Z: 0}, 0)
	si, ok := s.Intersect(ray, 0.001, math.MaxFloat64)
	if !ok {
		t.Fatalf("expected hit from inside sphere")
	}
	if si.Hit.Out {
		t.Errorf("expected Out=false when ray originates inside the sphere")
	}
}

func TestSphereAreaAndBoundingBox(t *testing.T) {
	s := NewSphere(Vec3{}, 2, fakeMaterial{})
	wantArea := 4 * math.Pi * 4
	if math.Abs(s.Area()-wantArea) > 1e-9 {
		t.Errorf("Area = %v, want %v", s.Area(), wantArea)
	}
	box := s.BoundingBox()
	if box.Min != (Vec3{X: -2, Y: -2, Z: -2}) || box.Max != (Vec3{X: 2, Y: 2, Z: 2}) {
		t.Errorf("BoundingBox = %v", box)
	}
}

func TestSphereSampleVisibleFromPointStaysOnSphere(t *testing.T) {
	s := NewSphere(Vec3{}, 1, fakeMaterial{})
	viewPoint := Vec3{X: 0, Y: 0, Z: -5}
	dir := s.SampleVisibleFromPoint(viewPoint, 0.3, 0.7)
	if math.Abs(dir.Length()-1) > 1e-9 {
		t.Errorf("sampled direction not unit length: %v", dir.Length())
	}
}
