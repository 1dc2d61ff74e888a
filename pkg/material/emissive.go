package material

import (
	"math/rand"

	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/texture"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

// Emissive absorbs every incoming ray and emits Strength * texture(point)
// in return. Its eval/scattering_pdf must never be called by the
// integrator, which is why they panic rather than silently return zero.
type Emissive struct {
	textured
	Strength Float
}

func NewEmissive(emission texture.Source, strength Float) *Emissive {
	return &Emissive{textured: textured{Albedo: emission}, Strength: strength}
}

func (e *Emissive) ScatterRay(ray *vecmath.Ray, hit prim.Hit, rng *rand.Rand) bool {
	return true
}

func (e *Emissive) ScatteringPDF(prim.Hit, Vec3, Vec3) Float {
	panic("material: ScatteringPDF called on an emissive surface")
}

func (e *Emissive) Eval(prim.Hit, Vec3, Vec3) Vec3 {
	panic("material: Eval called on an emissive surface")
}

func (e *Emissive) EvalOverScatteringPDF(prim.Hit, Vec3, Vec3) Vec3 {
	panic("material: EvalOverScatteringPDF called on an emissive surface")
}

func (e *Emissive) GetEmission(hit prim.Hit, _ Vec3) Vec3 {
	return e.Albedo.Value(hit.UV, hit.Point).Scale(e.Strength)
}

func (e *Emissive) IsLight() bool { return true }
func (e *Emissive) IsDelta() bool { return false }
