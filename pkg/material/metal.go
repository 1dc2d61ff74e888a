package material

import (
	"math/rand"

	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/texture"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

// Metal is a perfect mirror perturbed by a fuzz radius, a delta
// distribution so it contributes no direct-light-sampling term.
type Metal struct {
	textured
	Fuzz Float
}

func NewMetal(albedo texture.Source, fuzz Float) *Metal {
	if fuzz > 1 {
		fuzz = 1
	}
	return &Metal{textured: textured{Albedo: albedo}, Fuzz: fuzz}
}

func (m *Metal) ScatterRay(ray *vecmath.Ray, hit prim.Hit, rng *rand.Rand) bool {
	reflected := ray.Direction.Reflect(hit.Normal)
	if m.Fuzz > 0 {
		reflected = reflected.Add(randomInUnitSphere(rng).Scale(m.Fuzz)).Normalize()
	}
	origin := vecmath.OffsetRay(hit.Point, hit.Normal, hit.Error, true)
	*ray = vecmath.NewRay(origin, reflected, ray.Time)
	return reflected.Dot(hit.Normal) <= 0
}

func randomInUnitSphere(rng *rand.Rand) Vec3 {
	for {
		v := Vec3{X: 2*rng.Float64() - 1, Y: 2*rng.Float64() - 1, Z: 2*rng.Float64() - 1}
		if v.MagSq() < 1 {
			return v
		}
	}
}

func (m *Metal) ScatteringPDF(prim.Hit, Vec3, Vec3) Float { return 0 }

func (m *Metal) Eval(hit prim.Hit, wo, wi Vec3) Vec3 {
	return m.Albedo.Value(hit.UV, hit.Point)
}

func (m *Metal) EvalOverScatteringPDF(hit prim.Hit, wo, wi Vec3) Vec3 {
	return m.Albedo.Value(hit.UV, hit.Point)
}

func (m *Metal) GetEmission(prim.Hit, Vec3) Vec3 { return Vec3{} }
func (m *Metal) IsLight() bool                   { return false }
func (m *Metal) IsDelta() bool                   { return true }
