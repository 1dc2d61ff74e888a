// Package integrator implements the light transport estimators: the
// multiple-importance-sampled path tracer and an unweighted naive
// reference used to cross-check it.
package integrator

import (
	"math/rand"

	"github.com/jmoss/photontrace/pkg/vecmath"
)

type Float = vecmath.Float
type Vec3 = vecmath.Vec3

// Integrator is the single-method contract the sampler drives, once per
// sample per pixel: given a primary ray and an RNG, estimate the
// radiance arriving along it. The returned ray count is every BVH query
// issued while evaluating the estimate (primary/bounce traversals plus
// shadow rays), feeding the sampler's rays_shot counter.
type Integrator interface {
	Li(ray vecmath.Ray, rng *rand.Rand) (Vec3, uint64)
}

const (
	maxDepth             = 50
	russianRouletteDepth = 3
	russianRouletteCap   = 0.95
)
