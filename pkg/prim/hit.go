// Package prim implements the intersectable geometric primitives: the
// numerically stabilized sphere and the watertight triangle.
package prim

import (
	"math/rand"

	"github.com/jmoss/photontrace/pkg/vecmath"
)

type Float = vecmath.Float
type Vec3 = vecmath.Vec3
type Vec2 = vecmath.Vec2

// Material is the full BSDF contract, defined here (rather than in
// pkg/material, which implements it) so that both pkg/prim and pkg/sky
// can hold a Material reference on a Hit/SurfaceIntersection without an
// import cycle through pkg/material.
type Material interface {
	// ScatterRay mutates ray in place to the sampled continuation
	// direction. It returns true when the path terminates at this
	// vertex (emissive or absorbed).
	ScatterRay(ray *vecmath.Ray, hit Hit, rng *rand.Rand) (terminate bool)
	// ScatteringPDF is the solid-angle pdf of having sampled wi given wo
	// and hit; zero for delta materials.
	ScatteringPDF(hit Hit, wo, wi Vec3) Float
	// Eval returns f(wo,wi) * |cos(theta_i)|.
	Eval(hit Hit, wo, wi Vec3) Vec3
	// EvalOverScatteringPDF returns Eval/ScatteringPDF directly.
	EvalOverScatteringPDF(hit Hit, wo, wi Vec3) Vec3
	GetEmission(hit Hit, wo Vec3) Vec3
	IsLight() bool
	IsDelta() bool
	RequiresUV() bool
}

// Hit records a single ray/surface intersection.
type Hit struct {
	T      Float
	Point  Vec3
	Error  Vec3 // conservative componentwise position error
	Normal Vec3 // oriented against the incoming ray direction
	UV     Vec2
	HasUV  bool
	Out    bool // true if the ray entered from outside the surface
}

// SurfaceIntersection bundles a Hit with the material of the primitive it
// struck.
type SurfaceIntersection struct {
	Hit      Hit
	Material Material
}

// Primitive is the contract every intersectable shape implements.
type Primitive interface {
	Intersect(ray vecmath.Ray, tMin, tMax Float) (SurfaceIntersection, bool)
	BoundingBox() vecmath.AABB
	Area() Float
	MaterialIsLight() bool
	// Sample returns a uniformly-distributed point on the surface.
	Sample(u1, u2 Float) Vec3
	// SampleVisibleFromPoint importance-samples a direction from
	// viewPoint toward the primitive (cone sampling for spheres,
	// uniform-area for triangles).
	SampleVisibleFromPoint(viewPoint Vec3, u1, u2 Float) Vec3
	// ScatteringPDF is the solid-angle pdf of having sampled direction
	// wi, from the shading point described by hit (with outgoing
	// direction wo), toward lightPoint on this primitive's surface.
	ScatteringPDF(hit Hit, wo, lightPoint Vec3) Float
}
