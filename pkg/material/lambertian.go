package material

import (
	"math"
	"math/rand"

	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/stats"
	"github.com/jmoss/photontrace/pkg/texture"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

// Lambertian is a perfectly diffuse surface: cosine-weighted hemisphere
// sampling, pdf = cos(theta)/pi, attenuation = albedo/pi.
type Lambertian struct {
	textured
}

func NewLambertian(albedo texture.Source) *Lambertian {
	return &Lambertian{textured{Albedo: albedo}}
}

func (l *Lambertian) ScatterRay(ray *vecmath.Ray, hit prim.Hit, rng *rand.Rand) bool {
	frame := vecmath.NewFrame(hit.Normal)
	local := stats.CosineHemisphere(rng.Float64(), rng.Float64())
	dir := frame.ToWorld(local)
	origin := vecmath.OffsetRay(hit.Point, hit.Normal, hit.Error, true)
	*ray = vecmath.NewRay(origin, dir, ray.Time)
	return false
}

func (l *Lambertian) ScatteringPDF(hit prim.Hit, wo, wi Vec3) Float {
	return stats.CosineHemispherePdf(wi.Dot(hit.Normal))
}

func (l *Lambertian) Eval(hit prim.Hit, wo, wi Vec3) Vec3 {
	cosine := wi.Dot(hit.Normal)
	if cosine <= 0 {
		return Vec3{}
	}
	albedo := l.Albedo.Value(hit.UV, hit.Point)
	return albedo.Scale(cosine / math.Pi)
}

func (l *Lambertian) EvalOverScatteringPDF(hit prim.Hit, wo, wi Vec3) Vec3 {
	cosine := wi.Dot(hit.Normal)
	if cosine <= 0 {
		return Vec3{}
	}
	return l.Albedo.Value(hit.UV, hit.Point)
}

func (l *Lambertian) GetEmission(prim.Hit, Vec3) Vec3 { return Vec3{} }
func (l *Lambertian) IsLight() bool                   { return false }
func (l *Lambertian) IsDelta() bool                   { return false }
