package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jmoss/photontrace/pkg/accel"
	"github.com/jmoss/photontrace/pkg/material"
	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/sky"
	"github.com/jmoss/photontrace/pkg/texture"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

func litSphereScene() *accel.BVH {
	floor := prim.NewSphere(Vec3{X: 0, Y: -1000, Z: 0}, 1000, material.NewLambertian(texture.NewSolid(Vec3{X: 0.5, Y: 0.5, Z: 0.5})))
	light := prim.NewSphere(Vec3{X: 0, Y: 5, Z: 0}, 2, material.NewEmissive(texture.NewSolid(Vec3{X: 1, Y: 1, Z: 1}), 8))
	return accel.Build([]prim.Primitive{floor, light}, accel.DefaultBuildConfig())
}

func downwardRay() vecmath.Ray {
	return vecmath.NewRay(Vec3{X: 0, Y: 3, Z: 0}, Vec3{X: 0.01, Y: -1, Z: 0}, 0)
}

func TestPathTracingProducesFiniteNonNegativeRadiance(t *testing.T) {
	bvh := litSphereScene()
	pt := NewPathTracing(bvh, nil)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		c, _ := pt.Li(downwardRay(), rng)
		if !c.IsFinite() || c.ContainsNaN() {
			t.Fatalf("sample %d: non-finite radiance %v", i, c)
		}
		if c.X < 0 || c.Y < 0 || c.Z < 0 {
			t.Fatalf("sample %d: negative radiance %v", i, c)
		}
	}
}

func TestPathTracingSeesDirectLight(t *testing.T) {
	bvh := litSphereScene()
	pt := NewPathTracing(bvh, nil)
	rng := rand.New(rand.NewSource(11))

	var sum Vec3
	const n = 500
	for i := 0; i < n; i++ {
		c, _ := pt.Li(downwardRay(), rng)
		sum = sum.Add(c)
	}
	mean := sum.Scale(1.0 / n)
	if mean.Luminance() <= 0 {
		t.Errorf("expected positive mean radiance under a visible light, got %v", mean)
	}
}

func TestPathTracingAndNaiveAgreeInExpectation(t *testing.T) {
	bvh := litSphereScene()
	pt := NewPathTracing(bvh, nil)
	naive := NewNaive(bvh, nil)

	rngA := rand.New(rand.NewSource(42))
	rngB := rand.New(rand.NewSource(42))

	var sumPT, sumNaive Vec3
	const n = 4000
	for i := 0; i < n; i++ {
		cPT, _ := pt.Li(downwardRay(), rngA)
		cNaive, _ := naive.Li(downwardRay(), rngB)
		sumPT = sumPT.Add(cPT)
		sumNaive = sumNaive.Add(cNaive)
	}
	meanPT := sumPT.Scale(1.0 / n).Luminance()
	meanNaive := sumNaive.Scale(1.0 / n).Luminance()

	if meanPT <= 0 || meanNaive <= 0 {
		t.Fatalf("expected both integrators to see the light, got PT=%v naive=%v", meanPT, meanNaive)
	}
	ratio := meanPT / meanNaive
	if ratio < 0.5 || ratio > 2.0 {
		t.Errorf("MIS and naive means diverge too much: PT=%v naive=%v ratio=%v", meanPT, meanNaive, ratio)
	}
}

// furnaceScene builds a Lambertian sphere of albedo 1 nested inside a
// uniformly emissive enclosing sphere of radiance 1. Energy conservation
// demands every ray leaving the inner sphere converges to radiance 1.0
// regardless of how many times it bounces between the two surfaces.
func furnaceScene() *accel.BVH {
	inner := prim.NewSphere(Vec3{}, 2, material.NewLambertian(texture.NewSolid(Vec3{X: 1, Y: 1, Z: 1})))
	enclosure := prim.NewSphere(Vec3{}, 100, material.NewEmissive(texture.NewSolid(Vec3{X: 1, Y: 1, Z: 1}), 1))
	return accel.Build([]prim.Primitive{inner, enclosure}, accel.DefaultBuildConfig())
}

func TestPathTracingFurnaceTestConservesEnergy(t *testing.T) {
	bvh := furnaceScene()
	pt := NewPathTracing(bvh, nil)
	rng := rand.New(rand.NewSource(99))

	ray := vecmath.NewRay(Vec3{X: 0, Y: 0, Z: 10}, Vec3{X: 0, Y: 0, Z: -1}, 0)

	var sum Vec3
	const n = 3000
	for i := 0; i < n; i++ {
		c, _ := pt.Li(ray, rng)
		sum = sum.Add(c)
	}
	mean := sum.Scale(1.0 / n)

	const want = 1.0
	const tolerance = 0.1
	for _, c := range []Float{mean.X, mean.Y, mean.Z} {
		if math.Abs(c-want) > tolerance {
			t.Errorf("furnace test: expected radiance near %v, got channel %v (mean %v)", want, c, mean)
		}
	}
}

// misSceneWithRoughFloor is a single emissive sphere above a rough metal
// (GGX) floor: both the light-sampling and BSDF-sampling strategies are
// individually high-variance here, so MIS combining them should do no
// worse than either alone. NewGGX squares roughness into alpha, so a
// roughness of sqrt(0.1) gives alpha = 0.1.
func misSceneWithRoughFloor() *accel.BVH {
	floor := prim.NewSphere(Vec3{X: 0, Y: -1000, Z: 0}, 1000, material.NewGGX(texture.NewSolid(Vec3{X: 0.8, Y: 0.8, Z: 0.8}), math.Sqrt(0.1), 1.5, 1, true))
	light := prim.NewSphere(Vec3{X: 0, Y: 5, Z: 0}, 1, material.NewEmissive(texture.NewSolid(Vec3{X: 1, Y: 1, Z: 1}), 12))
	return accel.Build([]prim.Primitive{floor, light}, accel.DefaultBuildConfig())
}

// sampleVariance is the unbiased sample variance of samples. The MIS
// test below uses it to compare PathTracing against Naive, whose pure
// BSDF sampling is the single-strategy estimator MIS is checked against.
func sampleVariance(samples []Float) Float {
	var mean Float
	for i, x := range samples {
		mean += (x - mean) / Float(i+1)
	}
	var variance Float
	for _, x := range samples {
		d := x - mean
		variance += d * d
	}
	return variance / Float(len(samples)-1)
}

func TestMISVarianceDoesNotExceedBSDFSamplingOnly(t *testing.T) {
	bvh := misSceneWithRoughFloor()
	mis := NewPathTracing(bvh, nil)
	bsdfOnly := NewNaive(bvh, nil)

	ray := downwardRay()
	const n = 256

	misSamples := make([]Float, n)
	rngMIS := rand.New(rand.NewSource(17))
	for i := range misSamples {
		c, _ := mis.Li(ray, rngMIS)
		misSamples[i] = c.Luminance()
	}

	bsdfSamples := make([]Float, n)
	rngBSDF := rand.New(rand.NewSource(17))
	for i := range bsdfSamples {
		c, _ := bsdfOnly.Li(ray, rngBSDF)
		bsdfSamples[i] = c.Luminance()
	}

	misVar := sampleVariance(misSamples)
	bsdfVar := sampleVariance(bsdfSamples)

	if misVar > bsdfVar*1.05 {
		t.Errorf("MIS variance %v exceeds BSDF-only variance %v by more than 5%%", misVar, bsdfVar)
	}
}

func TestPathTracingWithSkyHandlesMiss(t *testing.T) {
	floor := prim.NewSphere(Vec3{X: 0, Y: -1000, Z: 0}, 1000, material.NewLambertian(texture.NewSolid(Vec3{X: 0.5, Y: 0.5, Z: 0.5})))
	bvh := accel.Build([]prim.Primitive{floor}, accel.DefaultBuildConfig())
	environment := sky.New(texture.NewSolid(Vec3{X: 0.1, Y: 0.2, Z: 0.4}), 16, 8)
	pt := NewPathTracing(bvh, environment)

	rng := rand.New(rand.NewSource(3))
	upRay := vecmath.NewRay(Vec3{X: 0, Y: 3, Z: 0}, Vec3{X: 0, Y: 1, Z: 0}, 0)
	c, _ := pt.Li(upRay, rng)
	if !c.IsFinite() {
		t.Fatalf("non-finite result on sky hit: %v", c)
	}
	if c.Luminance() <= 0 {
		t.Errorf("expected to see sky radiance looking straight up, got %v", c)
	}
}
