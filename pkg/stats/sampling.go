package stats

import (
	"math"

	"github.com/jmoss/photontrace/pkg/vecmath"
)

const Pi = math.Pi

// PowerHeuristic combines two sampling strategies' pdfs with the
// beta=2 power heuristic used for multiple importance sampling.
func PowerHeuristic(fPdf, gPdf Float) Float {
	f2 := fPdf * fPdf
	g2 := gPdf * gPdf
	if f2+g2 == 0 {
		return 0
	}
	return f2 / (f2 + g2)
}

// CosineHemisphere samples a direction in the local-frame hemisphere
// around +z with pdf cos(theta)/pi, using the Malley method (uniform disk
// lifted onto the hemisphere).
func CosineHemisphere(u1, u2 Float) vecmath.Vec3 {
	r := math.Sqrt(u1)
	phi := 2 * Pi * u2
	x := r * math.Cos(phi)
	y := r * math.Sin(phi)
	z := math.Sqrt(math.Max(0, 1-u1))
	return vecmath.Vec3{X: x, Y: y, Z: z}
}

func CosineHemispherePdf(cosTheta Float) Float {
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / Pi
}

// GGXSampleHalfVectorIsotropic draws a half-vector in local space (+z
// normal) from the classical GGX/Trowbridge-Reitz normal distribution,
// via inverse-CDF sampling of cos(theta_h).
func GGXSampleHalfVectorIsotropic(alpha, u1, u2 Float) vecmath.Vec3 {
	if alpha == 0 {
		return vecmath.Vec3{X: 0, Y: 0, Z: 1}
	}
	cosTheta := math.Sqrt((1 - u1) / (1 + (alpha*alpha-1)*u1))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * Pi * u2
	return vecmath.Vec3{
		X: sinTheta * math.Cos(phi),
		Y: sinTheta * math.Sin(phi),
		Z: cosTheta,
	}
}

// GGXDistribution is the isotropic Trowbridge-Reitz normal distribution
// function D(h) for a half-vector h expressed in local space.
func GGXDistributionIsotropic(alpha Float, cosThetaH Float) Float {
	if cosThetaH <= 0 {
		return 0
	}
	a2 := alpha * alpha
	c2 := cosThetaH * cosThetaH
	denom := c2*(a2-1) + 1
	return a2 / (Pi * denom * denom)
}

func ggxLambdaIsotropic(alpha, vx, vy, vz Float) Float {
	if vz == 0 {
		return 0
	}
	tan2 := (vx*vx + vy*vy) / (vz * vz)
	return 0.5 * (math.Sqrt(1+alpha*alpha*tan2) - 1)
}

// GGXG1Isotropic is the Smith masking function for a single direction.
func GGXG1Isotropic(alpha Float, v vecmath.Vec3) Float {
	return 1 / (1 + ggxLambdaIsotropic(alpha, v.X, v.Y, v.Z))
}

// GGXG1Anisotropic is the Smith masking function with separate alphaX/
// alphaY roughness terms.
func GGXG1Anisotropic(alphaX, alphaY Float, v vecmath.Vec3) Float {
	if v.Z == 0 {
		return 0
	}
	lambda := 0.5 * (math.Sqrt(1+(alphaX*alphaX*v.X*v.X+alphaY*alphaY*v.Y*v.Y)/(v.Z*v.Z)) - 1)
	return 1 / (1 + lambda)
}

func GGXDistributionAnisotropic(alphaX, alphaY Float, h vecmath.Vec3) Float {
	if h.Z <= 0 {
		return 0
	}
	e := (h.X*h.X)/(alphaX*alphaX) + (h.Y*h.Y)/(alphaY*alphaY) + h.Z*h.Z
	return 1 / (Pi * alphaX * alphaY * e * e)
}

// SampleVNDFIsotropic draws a visible-normal-distribution-sampled half
// vector following Heitz 2018, given the outgoing direction wo in local
// space (+z normal).
func SampleVNDFIsotropic(alpha Float, wo vecmath.Vec3, u1, u2 Float) vecmath.Vec3 {
	return SampleVNDFAnisotropic(alpha, alpha, wo, u1, u2)
}

// SampleVNDFAnisotropic is Heitz's "Sampling the GGX Distribution of
// Visible Normals" algorithm, generalized to independent alphaX/alphaY.
func SampleVNDFAnisotropic(alphaX, alphaY Float, wo vecmath.Vec3, u1, u2 Float) vecmath.Vec3 {
	vh := vecmath.Vec3{X: alphaX * wo.X, Y: alphaY * wo.Y, Z: wo.Z}.Normalize()

	lenSq := vh.X*vh.X + vh.Y*vh.Y
	var t1 vecmath.Vec3
	if lenSq > 0 {
		invLen := 1 / math.Sqrt(lenSq)
		t1 = vecmath.Vec3{X: -vh.Y * invLen, Y: vh.X * invLen, Z: 0}
	} else {
		t1 = vecmath.Vec3{X: 1, Y: 0, Z: 0}
	}
	t2 := vh.Cross(t1)

	r := math.Sqrt(u1)
	phi := 2 * Pi * u2
	p1 := r * math.Cos(phi)
	p2 := r * math.Sin(phi)
	s := 0.5 * (1 + vh.Z)
	p2 = (1-s)*math.Sqrt(math.Max(0, 1-p1*p1)) + s*p2

	nh := t1.Scale(p1).Add(t2.Scale(p2)).Add(vh.Scale(math.Sqrt(math.Max(0, 1-p1*p1-p2*p2))))

	h := vecmath.Vec3{X: alphaX * nh.X, Y: alphaY * nh.Y, Z: math.Max(1e-6, nh.Z)}
	return h.Normalize()
}
