package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/texture"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

func flatHit() prim.Hit {
	return prim.Hit{
		Point:  Vec3{X: 0, Y: 0, Z: 0},
		Normal: Vec3{X: 0, Y: 1, Z: 0},
		Error:  Vec3{X: 1e-6, Y: 1e-6, Z: 1e-6},
		Out:    true,
	}
}

func TestLambertianScatterStaysInHemisphere(t *testing.T) {
	l := NewLambertian(texture.NewSolid(Vec3{X: 1, Y: 1, Z: 1}))
	rng := rand.New(rand.NewSource(1))
	hit := flatHit()
	ray := vecmath.NewRay(Vec3{X: 0, Y: -1, Z: 0}, Vec3{X: 0, Y: 1, Z: 0}, 0)
	for i := 0; i < 100; i++ {
		r := ray
		if l.ScatterRay(&r, hit, rng) {
			t.Fatalf("lambertian should never terminate the path")
		}
		if r.Direction.Dot(hit.Normal) < 0 {
			t.Fatalf("scattered direction %v below the hemisphere", r.Direction)
		}
	}
}

func TestLambertianPdfMatchesEval(t *testing.T) {
	l := NewLambertian(texture.NewSolid(Vec3{X: 1, Y: 1, Z: 1}))
	hit := flatHit()
	wo := Vec3{X: 0, Y: -1, Z: 0}
	wi := Vec3{X: 0, Y: 1, Z: 0}
	pdf := l.ScatteringPDF(hit, wo, wi)
	wantPdf := 1 / math.Pi
	if math.Abs(pdf-wantPdf) > 1e-9 {
		t.Errorf("pdf = %v, want %v", pdf, wantPdf)
	}
	eval := l.Eval(hit, wo, wi)
	evalOverPdf := l.EvalOverScatteringPDF(hit, wo, wi)
	got := eval.Scale(1 / pdf)
	if math.Abs(got.X-evalOverPdf.X) > 1e-9 {
		t.Errorf("eval/pdf = %v, EvalOverScatteringPDF = %v", got, evalOverPdf)
	}
}

func TestMetalIsDeltaAndReflects(t *testing.T) {
	m := NewMetal(texture.NewSolid(Vec3{X: 0.8, Y: 0.8, Z: 0.8}), 0)
	if !m.IsDelta() {
		t.Fatalf("metal must be a delta material")
	}
	hit := flatHit()
	ray := vecmath.NewRay(Vec3{X: -1, Y: -1, Z: 0}, Vec3{X: 1, Y: -1, Z: 0}, 0)
	m.ScatterRay(&ray, hit, rand.New(rand.NewSource(2)))
	want := Vec3{X: 1, Y: 1, Z: 0}.Normalize()
	if ray.Direction.Sub(want).Length() > 1e-9 {
		t.Errorf("reflected direction = %v, want %v", ray.Direction, want)
	}
}

func TestDielectricIsDelta(t *testing.T) {
	d := NewDielectric(texture.NewSolid(Vec3{X: 1, Y: 1, Z: 1}), 1.5)
	if !d.IsDelta() {
		t.Fatalf("dielectric must be a delta material")
	}
}

func TestEmissiveTerminatesAndEmits(t *testing.T) {
	e := NewEmissive(texture.NewSolid(Vec3{X: 1, Y: 1, Z: 1}), 4)
	ray := vecmath.NewRay(Vec3{}, Vec3{X: 0, Y: 1, Z: 0}, 0)
	if !e.ScatterRay(&ray, flatHit(), rand.New(rand.NewSource(3))) {
		t.Fatalf("emissive must terminate the path")
	}
	emission := e.GetEmission(flatHit(), Vec3{X: 0, Y: -1, Z: 0})
	want := Vec3{X: 4, Y: 4, Z: 4}
	if emission != want {
		t.Errorf("GetEmission = %v, want %v", emission, want)
	}
}

func TestGGXIsotropicScatterStaysAboveSurface(t *testing.T) {
	g := NewGGX(texture.NewSolid(Vec3{X: 0.9, Y: 0.9, Z: 0.9}), 0.3, 1.5, 0, true)
	rng := rand.New(rand.NewSource(4))
	hit := flatHit()
	for i := 0; i < 200; i++ {
		ray := vecmath.NewRay(Vec3{X: 0.1, Y: -1, Z: 0}, Vec3{X: 0.1, Y: 1, Z: 0}, 0)
		g.ScatterRay(&ray, hit, rng)
		if ray.Direction.Dot(hit.Normal) < -1e-6 {
			t.Fatalf("GGX scattered below the surface: %v", ray.Direction)
		}
	}
}

func TestGGXPdfNonNegative(t *testing.T) {
	g := NewGGX(texture.NewSolid(Vec3{X: 0.9, Y: 0.9, Z: 0.9}), 0.5, 1.5, 0, false)
	hit := flatHit()
	wo := Vec3{X: 0.2, Y: -1, Z: 0}.Normalize()
	wi := Vec3{X: -0.2, Y: 1, Z: 0}.Normalize()
	pdf := g.ScatteringPDF(hit, wo, wi)
	if pdf < 0 {
		t.Errorf("pdf = %v, want >= 0", pdf)
	}
}
