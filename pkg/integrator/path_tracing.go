package integrator

import (
	"math"
	"math/rand"

	"github.com/jmoss/photontrace/pkg/accel"
	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/rtlog"
	"github.com/jmoss/photontrace/pkg/sky"
	"github.com/jmoss/photontrace/pkg/stats"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

// PathTracing is the unbiased path integrator: at every non-delta vertex
// it combines a light-sampling (next event estimation) term with a
// BSDF-sampling term, weighted by the power heuristic, so that neither
// strategy's variance dominates. A BSDF-sampled ray that happens to land
// on a light is itself weighted down by the same heuristic, so the two
// strategies' contributions never double count.
type PathTracing struct {
	BVH     *accel.BVH
	Sky     *sky.Sky
	Logger  rtlog.Logger
	Verbose bool
}

// NewPathTracing builds a PathTracing integrator over bvh, with
// environment as the infinite light (nil disables it).
func NewPathTracing(bvh *accel.BVH, environment *sky.Sky) *PathTracing {
	return &PathTracing{BVH: bvh, Sky: environment, Logger: rtlog.Discard{}}
}

func (p *PathTracing) logf(format string, args ...any) {
	if p.Verbose && p.Logger != nil {
		p.Logger.Printf(format, args...)
	}
}

func (p *PathTracing) skyCanSample() bool {
	return p.Sky != nil && p.Sky.CanSample()
}

func (p *PathTracing) Li(ray vecmath.Ray, rng *rand.Rand) (Vec3, uint64) {
	radiance := Vec3{}
	throughput := Vec3{X: 1, Y: 1, Z: 1}
	specularBounce := true
	var prevHit prim.Hit
	var bsdfPdf Float
	var rayCount uint64

	for depth := 0; depth < maxDepth; depth++ {
		si, idx := p.BVH.CheckHit(ray)
		rayCount++
		wo := ray.Direction

		if idx == accel.SkyIndex {
			if p.Sky == nil {
				break
			}
			weight := Float(1)
			if depth > 0 && p.skyCanSample() {
				weight = stats.PowerHeuristic(bsdfPdf, p.Sky.Pdf(ray.Direction))
			}
			radiance = radiance.Add(throughput.MultiplyVec(p.Sky.ColourAt(ray.Direction).Scale(weight)))
			break
		}

		hit := si.Hit
		mat := si.Material

		if mat.IsLight() {
			weight := Float(1)
			if !specularBounce {
				lightPdf := p.BVH.GetPdfFromIndex(prevHit, hit, ray.Direction, idx, p.skyCanSample())
				weight = stats.PowerHeuristic(bsdfPdf, lightPdf)
			}
			radiance = radiance.Add(throughput.MultiplyVec(mat.GetEmission(hit, wo).Scale(weight)))
			break
		}

		if !mat.IsDelta() {
			contribution, lightRays := p.sampleLights(hit, wo, mat, rng)
			radiance = radiance.Add(throughput.MultiplyVec(contribution))
			rayCount += lightRays
		}

		nextRay := ray
		if mat.ScatterRay(&nextRay, hit, rng) {
			break
		}

		wi := nextRay.Direction
		contribution := mat.EvalOverScatteringPDF(hit, wo, wi)
		if contribution.IsZero() {
			break
		}

		throughput = throughput.MultiplyVec(contribution)
		specularBounce = mat.IsDelta()
		bsdfPdf = mat.ScatteringPDF(hit, wo, wi)
		prevHit = hit
		ray = nextRay

		if depth >= russianRouletteDepth {
			survive := math.Min(russianRouletteCap, throughput.ComponentMax())
			if survive <= 0 || rng.Float64() > survive {
				break
			}
			throughput = throughput.Scale(1 / survive)
		}

		if !throughput.IsFinite() || throughput.ContainsNaN() {
			p.logf("path_tracing: discarding non-finite throughput at depth %d", depth)
			break
		}
	}

	if !radiance.IsFinite() || radiance.ContainsNaN() {
		return Vec3{}, rayCount
	}
	return radiance, rayCount
}

// sampleLights performs one next-event-estimation sample: it picks
// uniformly among the sky (if importance-samplable) and the scene's
// samplable lights, then returns the MIS-weighted direct contribution
// and the number of shadow rays traced (0 or 1).
func (p *PathTracing) sampleLights(hit prim.Hit, wo Vec3, mat prim.Material, rng *rand.Rand) (Vec3, uint64) {
	samplable := p.BVH.GetSamplable()
	skySamplable := p.skyCanSample()
	n := len(samplable)
	if skySamplable {
		n++
	}
	if n == 0 {
		return Vec3{}, 0
	}

	pick := rng.Intn(n)
	if skySamplable && pick == n-1 {
		return p.sampleSky(hit, wo, mat, n, rng)
	}
	return p.sampleLight(hit, wo, mat, samplable[pick], n, rng)
}

func (p *PathTracing) sampleSky(hit prim.Hit, wo Vec3, mat prim.Material, n int, rng *rand.Rand) (Vec3, uint64) {
	wi := p.Sky.Sample(rng)
	cosine := wi.Dot(hit.Normal)
	if cosine <= 0 {
		return Vec3{}, 0
	}

	lightPdf := p.Sky.Pdf(wi) / Float(n)
	if lightPdf <= 0 {
		return Vec3{}, 0
	}

	shadowRay := vecmath.NewRay(vecmath.OffsetRay(hit.Point, hit.Normal, hit.Error, true), wi, 0)
	_, idx := p.BVH.CheckHit(shadowRay)
	if idx != accel.SkyIndex {
		return Vec3{}, 1
	}

	f := mat.Eval(hit, wo, wi)
	bsdfPdf := mat.ScatteringPDF(hit, wo, wi)
	weight := stats.PowerHeuristic(lightPdf, bsdfPdf)
	return f.Scale(weight / lightPdf).MultiplyVec(p.Sky.ColourAt(wi)), 1
}

func (p *PathTracing) sampleLight(hit prim.Hit, wo Vec3, mat prim.Material, lightIdx, n int, rng *rand.Rand) (Vec3, uint64) {
	light := p.BVH.GetObject(lightIdx)
	wi := light.SampleVisibleFromPoint(hit.Point, rng.Float64(), rng.Float64())

	cosine := wi.Dot(hit.Normal)
	if cosine <= 0 {
		return Vec3{}, 0
	}

	shadowRay := vecmath.NewRay(vecmath.OffsetRay(hit.Point, hit.Normal, hit.Error, true), wi, 0)
	lightSi, visible := p.BVH.CheckHitIndex(shadowRay, lightIdx)
	if !visible {
		return Vec3{}, 1
	}

	lightPdf := light.ScatteringPDF(hit, wo, lightSi.Hit.Point) / Float(n)
	if lightPdf <= 0 {
		return Vec3{}, 1
	}

	f := mat.Eval(hit, wo, wi)
	bsdfPdf := mat.ScatteringPDF(hit, wo, wi)
	weight := stats.PowerHeuristic(lightPdf, bsdfPdf)
	emission := lightSi.Material.GetEmission(lightSi.Hit, wi.Negate())
	return f.Scale(weight / lightPdf).MultiplyVec(emission), 1
}
