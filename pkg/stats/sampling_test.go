package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jmoss/photontrace/pkg/vecmath"
)

func TestCosineHemisphereStaysInHemisphere(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		v := CosineHemisphere(rng.Float64(), rng.Float64())
		if v.Z < 0 {
			t.Fatalf("CosineHemisphere produced z=%v, want >= 0", v.Z)
		}
		if math.Abs(v.Length()-1) > 1e-9 {
			t.Fatalf("CosineHemisphere not unit length: %v", v.Length())
		}
	}
}

func TestCosineHemispherePdfMatchesDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	const samples = 100000
	const bins = 10
	counts := make([]int, bins)
	for i := 0; i < samples; i++ {
		v := CosineHemisphere(rng.Float64(), rng.Float64())
		bin := int(v.Z * bins)
		if bin >= bins {
			bin = bins - 1
		}
		counts[bin]++
	}
	// A thin z-slab of the hemisphere has solid angle 2*pi*dz, so the
	// cos(theta)/pi pdf puts density 2z on z: bin i, covering
	// [i/bins, (i+1)/bins), expects mass proportional to 2i+1.
	expected := make([]Float, bins)
	for i := range expected {
		expected[i] = Float(2*i + 1)
	}
	chiSq := ChiSquaredGoodnessOfFit(counts, expected)
	if chiSq > ChiSquaredCriticalValue95(bins-1) {
		t.Errorf("chi-squared statistic %v too high, counts=%v", chiSq, counts)
	}
}

func TestGGXDistributionIntegratesNearOne(t *testing.T) {
	alpha := 0.3
	const steps = 2000
	var integral Float
	dTheta := (Pi / 2) / steps
	for i := 0; i < steps; i++ {
		theta := (Float(i) + 0.5) * dTheta
		cosTheta := math.Cos(theta)
		sinTheta := math.Sin(theta)
		d := GGXDistributionIsotropic(alpha, cosTheta)
		// integrate D(h) cos(theta) sin(theta) dtheta dphi over hemisphere
		integral += d * cosTheta * sinTheta * dTheta * 2 * Pi
	}
	if math.Abs(integral-1) > 0.02 {
		t.Errorf("GGX NDF energy integral = %v, want ~1", integral)
	}
}

func TestSampleVNDFProducesUpperHemisphereHalfVectors(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	wo := vecmath.Vec3{X: 0.3, Y: 0.2, Z: 0.9}.Normalize()
	for i := 0; i < 1000; i++ {
		h := SampleVNDFIsotropic(0.4, wo, rng.Float64(), rng.Float64())
		if h.Z <= 0 {
			t.Fatalf("VNDF sampled half-vector below hemisphere: %v", h)
		}
	}
}
