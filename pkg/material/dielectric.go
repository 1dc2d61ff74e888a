package material

import (
	"math"
	"math/rand"

	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/texture"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

// Dielectric refracts or reflects according to Snell's law and a Schlick
// Fresnel approximation, with total internal reflection forcing a
// reflection. A delta distribution, like Metal.
type Dielectric struct {
	textured
	IOR Float
}

func NewDielectric(albedo texture.Source, ior Float) *Dielectric {
	return &Dielectric{textured: textured{Albedo: albedo}, IOR: ior}
}

func schlickReflectance(cosine, f0 Float) Float {
	return f0 + (1-f0)*math.Pow(1-cosine, 5)
}

func (d *Dielectric) ScatterRay(ray *vecmath.Ray, hit prim.Hit, rng *rand.Rand) bool {
	etaFraction := d.IOR
	if hit.Out {
		etaFraction = 1 / d.IOR
	}

	unitDir := ray.Direction
	cosTheta := math.Min(unitDir.Negate().Dot(hit.Normal), 1)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))

	cannotRefract := etaFraction*sinTheta > 1
	f0 := (1 - etaFraction) / (1 + etaFraction)
	f0 *= f0

	if cannotRefract || schlickReflectance(cosTheta, f0) > rng.Float64() {
		reflected := unitDir.Reflect(hit.Normal)
		origin := vecmath.OffsetRay(hit.Point, hit.Normal, hit.Error, true)
		*ray = vecmath.NewRay(origin, reflected, ray.Time)
		return false
	}

	perp := unitDir.Add(hit.Normal.Scale(cosTheta)).Scale(etaFraction)
	para := hit.Normal.Scale(-math.Sqrt(math.Abs(1 - perp.MagSq())))
	refracted := perp.Add(para)

	origin := vecmath.OffsetRay(hit.Point, hit.Normal, hit.Error, false)
	*ray = vecmath.NewRay(origin, refracted, ray.Time)
	return false
}

func (d *Dielectric) ScatteringPDF(prim.Hit, Vec3, Vec3) Float { return 0 }

func (d *Dielectric) Eval(hit prim.Hit, wo, wi Vec3) Vec3 {
	return d.Albedo.Value(hit.UV, hit.Point)
}

func (d *Dielectric) EvalOverScatteringPDF(hit prim.Hit, wo, wi Vec3) Vec3 {
	return d.Albedo.Value(hit.UV, hit.Point)
}

func (d *Dielectric) GetEmission(prim.Hit, Vec3) Vec3 { return Vec3{} }
func (d *Dielectric) IsLight() bool                   { return false }
func (d *Dielectric) IsDelta() bool                   { return true }
