package material

import (
	"math"
	"math/rand"

	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/stats"
	"github.com/jmoss/photontrace/pkg/texture"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

// GGX is a Trowbridge-Reitz microfacet reflector. Roughness is squared
// into alpha per convention; SampleVNDF switches between classical
// half-vector sampling and Heitz's visible-normal sampling, and
// AlphaY enables anisotropy (AlphaY == 0 means isotropic, using Alpha for
// both axes).
type GGX struct {
	textured
	Alpha, AlphaY Float
	IOR           Float
	Metallic      Float
	SampleVNDF    bool
}

func NewGGX(albedo texture.Source, roughness, ior, metallic Float, sampleVNDF bool) *GGX {
	alpha := roughness * roughness
	return &GGX{textured: textured{Albedo: albedo}, Alpha: alpha, IOR: ior, Metallic: metallic, SampleVNDF: sampleVNDF}
}

func NewAnisotropicGGX(albedo texture.Source, roughnessX, roughnessY, ior, metallic Float) *GGX {
	return &GGX{
		textured: textured{Albedo: albedo},
		Alpha:    roughnessX * roughnessX, AlphaY: roughnessY * roughnessY,
		IOR: ior, Metallic: metallic, SampleVNDF: true,
	}
}

func (g *GGX) alphaXY() (Float, Float) {
	if g.AlphaY == 0 {
		return g.Alpha, g.Alpha
	}
	return g.Alpha, g.AlphaY
}

func (g *GGX) fresnel(cosTheta Float, albedo Vec3) Vec3 {
	f0 := math.Abs((1 - g.IOR) / (1 + g.IOR))
	f0 *= f0
	base := Vec3{X: f0, Y: f0, Z: f0}
	tinted := base.Scale(1 - g.Metallic).Add(albedo.Scale(g.Metallic))
	schlick := math.Pow(1-cosTheta, 5)
	one := Vec3{X: 1, Y: 1, Z: 1}
	return tinted.Add(one.Sub(tinted).Scale(schlick))
}

func (g *GGX) ScatterRay(ray *vecmath.Ray, hit prim.Hit, rng *rand.Rand) bool {
	frame := vecmath.NewFrame(hit.Normal)
	woLocal := frame.ToLocal(ray.Direction.Negate())
	if woLocal.Z <= 0 {
		woLocal.Z = 1e-4
	}

	ax, ay := g.alphaXY()
	var hLocal Vec3
	if g.SampleVNDF {
		hLocal = stats.SampleVNDFAnisotropic(ax, ay, woLocal, rng.Float64(), rng.Float64())
	} else {
		hLocal = stats.GGXSampleHalfVectorIsotropic(g.Alpha, rng.Float64(), rng.Float64())
	}
	hWorld := frame.ToWorld(hLocal)

	wiLocal := woLocal.Reflect(hLocal).Negate()
	wiWorld := frame.ToWorld(wiLocal)

	origin := vecmath.OffsetRay(hit.Point, hit.Normal, hit.Error, true)
	*ray = vecmath.NewRay(origin, wiWorld, ray.Time)
	_ = hWorld
	return wiLocal.Z <= 0
}

func (g *GGX) ScatteringPDF(hit prim.Hit, wo, wi Vec3) Float {
	frame := vecmath.NewFrame(hit.Normal)
	woLocal := frame.ToLocal(wo.Negate())
	wiLocal := frame.ToLocal(wi)
	if wiLocal.Z <= 0 || woLocal.Z <= 0 {
		return 0
	}
	hLocal := woLocal.Add(wiLocal).Normalize()
	ax, ay := g.alphaXY()

	var d Float
	if ax == ay {
		d = stats.GGXDistributionIsotropic(ax, hLocal.Z)
	} else {
		d = stats.GGXDistributionAnisotropic(ax, ay, hLocal)
	}
	if d == 0 {
		return math.Inf(1)
	}

	if g.SampleVNDF {
		g1 := stats.GGXG1Anisotropic(ax, ay, woLocal)
		pdfH := g1 * math.Abs(woLocal.Dot(hLocal)) * d / math.Abs(woLocal.Z)
		return pdfH / (4 * math.Abs(woLocal.Dot(hLocal)))
	}
	pdfH := d * hLocal.Z
	return pdfH / (4 * math.Abs(woLocal.Dot(hLocal)))
}

func (g *GGX) Eval(hit prim.Hit, wo, wi Vec3) Vec3 {
	frame := vecmath.NewFrame(hit.Normal)
	woLocal := frame.ToLocal(wo.Negate())
	wiLocal := frame.ToLocal(wi)
	if wiLocal.Z <= 0 || woLocal.Z <= 0 {
		return Vec3{}
	}
	hLocal := woLocal.Add(wiLocal).Normalize()
	ax, ay := g.alphaXY()

	var d Float
	if ax == ay {
		d = stats.GGXDistributionIsotropic(ax, hLocal.Z)
	} else {
		d = stats.GGXDistributionAnisotropic(ax, ay, hLocal)
	}
	g1o := stats.GGXG1Anisotropic(ax, ay, woLocal)
	g1i := stats.GGXG1Anisotropic(ax, ay, wiLocal)
	gTerm := g1o * g1i

	albedo := g.Albedo.Value(hit.UV, hit.Point)
	f := g.fresnel(math.Abs(woLocal.Dot(hLocal)), albedo)

	brdf := f.Scale(gTerm * d / (4 * math.Abs(woLocal.Z) * math.Abs(wiLocal.Z)))
	return brdf.Scale(wiLocal.Z)
}

func (g *GGX) EvalOverScatteringPDF(hit prim.Hit, wo, wi Vec3) Vec3 {
	pdf := g.ScatteringPDF(hit, wo, wi)
	if pdf <= 0 || math.IsInf(pdf, 1) {
		return Vec3{}
	}
	e := g.Eval(hit, wo, wi)
	return e.Scale(1 / pdf)
}

func (g *GGX) GetEmission(prim.Hit, Vec3) Vec3 { return Vec3{} }
func (g *GGX) IsLight() bool                   { return false }
func (g *GGX) IsDelta() bool                   { return false }
