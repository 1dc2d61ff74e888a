// Package sky implements the environment background: a texture sampled
// equirectangularly, optionally importance-sampled via a luminance-
// weighted Distribution2D over a lat-long grid.
package sky

import (
	"math"
	"math/rand"

	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/stats"
	"github.com/jmoss/photontrace/pkg/texture"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

// _ ensures skyMaterial keeps satisfying prim.Material as that contract
// evolves; a compile error here is the intended early-warning signal.
var _ prim.Material = (*skyMaterial)(nil)

type Float = vecmath.Float
type Vec3 = vecmath.Vec3

// Sky is the infinite-light background. When resolution is zero on
// either axis it behaves as a uniform-sphere-sampled light (CanSample
// returns false and the integrator falls back to BSDF sampling alone).
type Sky struct {
	Texture      texture.Source
	Material     prim.Material
	width, height int
	distribution *stats.Distribution2D
}

// skyMaterial adapts the sky's texture into the prim.Material contract so
// the integrator can treat a sky hit uniformly with a surface hit: its
// only meaningful method is GetEmission, which looks up the environment
// colour along the incoming ray direction. It is never scattered off of
// (the path terminates at the sky), so the rest of the contract panics if
// ever called, the same guarantee Emissive gives for area lights.
type skyMaterial struct {
	sky *Sky
}

func (skyMaterial) RequiresUV() bool { return false }
func (skyMaterial) IsLight() bool    { return true }
func (skyMaterial) IsDelta() bool    { return false }

func (m *skyMaterial) ScatterRay(ray *vecmath.Ray, hit prim.Hit, rng *rand.Rand) bool {
	return true
}

func (m *skyMaterial) ScatteringPDF(prim.Hit, Vec3, Vec3) Float {
	panic("sky: ScatteringPDF called on the sky material")
}

func (m *skyMaterial) Eval(prim.Hit, Vec3, Vec3) Vec3 {
	panic("sky: Eval called on the sky material")
}

func (m *skyMaterial) EvalOverScatteringPDF(prim.Hit, Vec3, Vec3) Vec3 {
	panic("sky: EvalOverScatteringPDF called on the sky material")
}

func (m *skyMaterial) GetEmission(hit prim.Hit, wo Vec3) Vec3 {
	return m.sky.ColourAt(wo)
}

// New builds a Sky. If width*height > 0, it precomputes a luminance-
// weighted importance-sampling grid over the texture, following the
// Rec.709 weighting and sin(theta) solid-angle correction used for HDRI
// environment importance sampling.
func New(tex texture.Source, width, height int) *Sky {
	s := &Sky{Texture: tex, width: width, height: height}
	s.Material = &skyMaterial{sky: s}
	if width <= 0 || height <= 0 {
		return s
	}

	pdf := make([]Float, width*height)
	for y := 0; y < height; y++ {
		v := (Float(y) + 0.5) / Float(height)
		theta := v * math.Pi
		sinTheta := math.Sin(theta)
		for x := 0; x < width; x++ {
			u := (Float(x) + 0.5) / Float(width)
			dir := uvToDirection(u, v)
			colour := tex.Value(vecmath.Vec2{X: u, Y: v}, dir)
			pdf[y*width+x] = colour.Luminance() * sinTheta
		}
	}
	s.distribution = stats.NewDistribution2D(pdf, width)
	return s
}

func (s *Sky) CanSample() bool { return s.distribution != nil }

// ColourAt evaluates the environment texture along a direction.
func (s *Sky) ColourAt(dir Vec3) Vec3 {
	u, v := directionToUV(dir)
	return s.Texture.Value(vecmath.Vec2{X: u, Y: v}, dir)
}

// Sample importance-samples a direction proportional to luminance * sin
// theta, jittering the chosen texel with NextFloat as the original sky
// sampler does rather than a plain random offset.
func (s *Sky) Sample(rng *rand.Rand) Vec3 {
	if s.distribution == nil {
		return uniformSphere(rng)
	}
	ix, iy := s.distribution.Sample(rng.Float64(), rng.Float64())
	u := vecmath.NextFloat(Float(ix)+rng.Float64()) / Float(s.width)
	v := vecmath.NextFloat(Float(iy)+rng.Float64()) / Float(s.height)
	return uvToDirection(u, v)
}

// Pdf returns the solid-angle pdf of having sampled direction wi.
func (s *Sky) Pdf(wi Vec3) Float {
	if s.distribution == nil {
		return 1 / (4 * math.Pi)
	}
	u, v := directionToUV(wi)
	sinTheta := math.Sqrt(math.Max(0, 1-wi.Z*wi.Z))
	if sinTheta <= 0 {
		return 0
	}
	ix := int(u * Float(s.width))
	iy := int(v * Float(s.height))
	if ix >= s.width {
		ix = s.width - 1
	}
	if iy >= s.height {
		iy = s.height - 1
	}
	pixelPdf := s.distribution.Pdf(ix, iy)
	return Float(s.width*s.height) * pixelPdf / (sinTheta * 2 * math.Pi * math.Pi)
}

// GetSurfaceIntersection returns a degenerate SurfaceIntersection (zero
// Hit fields beyond what the integrator needs) carrying the sky's
// material, so the ray/BVH loop can fetch sky emission through the same
// SurfaceIntersection.Material.GetEmission path a surface hit uses.
func (s *Sky) GetSurfaceIntersection() prim.SurfaceIntersection {
	return prim.SurfaceIntersection{Material: s.Material}
}

func directionToUV(dir Vec3) (u, v Float) {
	theta := math.Acos(clamp(dir.Z, -1, 1))
	phi := math.Atan2(dir.Y, dir.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return phi / (2 * math.Pi), theta / math.Pi
}

func uvToDirection(u, v Float) Vec3 {
	phi := u * 2 * math.Pi
	theta := v * math.Pi
	sinTheta := math.Sin(theta)
	return Vec3{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: math.Cos(theta)}
}

func uniformSphere(rng *rand.Rand) Vec3 {
	z := 1 - 2*rng.Float64()
	a := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * rng.Float64()
	return Vec3{X: a * math.Cos(phi), Y: a * math.Sin(phi), Z: z}
}

func clamp(v, lo, hi Float) Float {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
