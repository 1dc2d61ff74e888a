package integrator

import (
	"math"
	"math/rand"

	"github.com/jmoss/photontrace/pkg/accel"
	"github.com/jmoss/photontrace/pkg/sky"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

// Naive is an unweighted path tracer: every vertex samples only the
// material's BSDF, with no next-event estimation and no MIS weighting.
// It converges to the same expected value as PathTracing but with much
// higher variance on scenes with small or distant lights; it exists to
// cross-check PathTracing rather than to render with.
type Naive struct {
	BVH *accel.BVH
	Sky *sky.Sky
}

func NewNaive(bvh *accel.BVH, environment *sky.Sky) *Naive {
	return &Naive{BVH: bvh, Sky: environment}
}

func (n *Naive) Li(ray vecmath.Ray, rng *rand.Rand) (Vec3, uint64) {
	radiance := Vec3{}
	throughput := Vec3{X: 1, Y: 1, Z: 1}
	var rayCount uint64

	for depth := 0; depth < maxDepth; depth++ {
		si, idx := n.BVH.CheckHit(ray)
		rayCount++
		wo := ray.Direction

		if idx == accel.SkyIndex {
			if n.Sky != nil {
				radiance = radiance.Add(throughput.MultiplyVec(n.Sky.ColourAt(ray.Direction)))
			}
			break
		}

		hit := si.Hit
		mat := si.Material
		radiance = radiance.Add(throughput.MultiplyVec(mat.GetEmission(hit, wo)))
		if mat.IsLight() {
			break
		}

		nextRay := ray
		if mat.ScatterRay(&nextRay, hit, rng) {
			break
		}

		contribution := mat.EvalOverScatteringPDF(hit, wo, nextRay.Direction)
		if contribution.IsZero() {
			break
		}
		throughput = throughput.MultiplyVec(contribution)
		ray = nextRay

		if depth >= russianRouletteDepth {
			survive := math.Min(russianRouletteCap, throughput.ComponentMax())
			if survive <= 0 || rng.Float64() > survive {
				break
			}
			throughput = throughput.Scale(1 / survive)
		}

		if !throughput.IsFinite() || throughput.ContainsNaN() {
			break
		}
	}

	if !radiance.IsFinite() || radiance.ContainsNaN() {
		return Vec3{}, rayCount
	}
	return radiance, rayCount
}
