package prim

import (
	"math"

	"github.com/jmoss/photontrace/pkg/vecmath"
)

// Sphere is intersected with the Ray-Tracing-Gems "remedy term"
// reformulation of the quadratic solution, which avoids the catastrophic
// cancellation the naive b^2-4ac formula suffers near tangent rays.
type Sphere struct {
	Center   Vec3
	Radius   Float
	Material Material
}

func NewSphere(center Vec3, radius Float, material Material) *Sphere {
	return &Sphere{Center: center, Radius: radius, Material: material}
}

func (s *Sphere) Intersect(ray vecmath.Ray, tMin, tMax Float) (SurfaceIntersection, bool) {
	dir := ray.Direction
	deltap := s.Center.Sub(ray.Origin)
	ddp := dir.Dot(deltap)
	deltapdot := deltap.Dot(deltap)

	remedy := deltap.Sub(dir.Scale(ddp))
	discriminant := s.Radius*s.Radius - remedy.Dot(remedy)
	if discriminant <= 0 {
		return SurfaceIntersection{}, false
	}

	sqrtVal := math.Sqrt(discriminant)
	var q Float
	if ddp > 0 {
		q = ddp + sqrtVal
	} else {
		q = ddp - sqrtVal
	}

	t0 := q
	t1 := (deltapdot - s.Radius*s.Radius) / q
	if t1 < t0 {
		t0, t1 = t1, t0
	}

	var t Float
	switch {
	case t0 > tMin && t0 < tMax:
		t = t0
	case t1 > tMin && t1 < tMax:
		t = t1
	default:
		return SurfaceIntersection{}, false
	}

	point := ray.At(t)
	normal := point.Sub(s.Center).Scale(1 / s.Radius)
	out := true
	if normal.Dot(dir) > 0 {
		out = false
		normal = normal.Negate()
	}

	hit := Hit{
		T:      t,
		Point:  point,
		Error:  Vec3{X: vecmath.Epsilon, Y: vecmath.Epsilon, Z: vecmath.Epsilon},
		Normal: normal,
		Out:    out,
	}
	if s.Material.RequiresUV() {
		hit.UV = s.uv(point)
		hit.HasUV = true
	}
	return SurfaceIntersection{Hit: hit, Material: s.Material}, true
}

func (s *Sphere) uv(point Vec3) Vec2 {
	x := (s.Center.X - point.X) / s.Radius
	y := (s.Center.Y - point.Y) / s.Radius
	z := (s.Center.Z - point.Z) / s.Radius
	phi := math.Atan2(-z, x) + math.Pi
	theta := math.Acos(-y)
	return Vec2{X: phi / (2 * math.Pi), Y: theta / math.Pi}
}

func (s *Sphere) BoundingBox() vecmath.AABB {
	r := Vec3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return vecmath.NewAABB(s.Center.Sub(r), s.Center.Add(r))
}

func (s *Sphere) Area() Float { return 4 * math.Pi * s.Radius * s.Radius }

func (s *Sphere) MaterialIsLight() bool { return s.Material.IsLight() }

func (s *Sphere) Sample(u1, u2 Float) Vec3 {
	z := 1 - 2*u1
	a := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * u2
	return s.Center.Add(Vec3{X: a * math.Cos(phi), Y: a * math.Sin(phi), Z: z}.Scale(s.Radius))
}

// SampleVisibleFromPoint cone-samples the solid angle the sphere subtends
// from viewPoint when viewPoint lies outside the sphere, falling back to
// uniform-area sampling when the viewer is inside.
func (s *Sphere) SampleVisibleFromPoint(viewPoint Vec3, u1, u2 Float) Vec3 {
	distSq := viewPoint.Sub(s.Center).MagSq()
	r2 := s.Radius * s.Radius

	var point Vec3
	if distSq <= r2 {
		point = s.Sample(u1, u2)
	} else {
		dist := math.Sqrt(distSq)
		sinThetaMaxSq := r2 / distSq
		cosThetaMax := math.Sqrt(math.Max(0, 1-sinThetaMaxSq))
		cosTheta := (1-u1) + u1*cosThetaMax
		sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
		phi := 2 * math.Pi * u2

		ds := dist*cosTheta - math.Sqrt(math.Max(0, r2-distSq*sinTheta*sinTheta))
		cosAlpha := (distSq + r2 - ds*ds) / (2 * dist * s.Radius)
		sinAlpha := math.Sqrt(math.Max(0, 1-cosAlpha*cosAlpha))

		frame := vecmath.NewFrame(viewPoint.Sub(s.Center).Normalize())
		local := Vec3{X: sinAlpha * math.Cos(phi), Y: sinAlpha * math.Sin(phi), Z: cosAlpha}
		point = s.Center.Add(frame.ToWorld(local).Scale(s.Radius))
	}
	return point.Sub(viewPoint).Normalize()
}

func (s *Sphere) ScatteringPDF(hit Hit, wo, lightPoint Vec3) Float {
	r2 := s.Radius * s.Radius
	distSq := hit.Point.Sub(s.Center).MagSq()
	if distSq <= r2 {
		toLight := lightPoint.Sub(hit.Point)
		distToLightSq := toLight.MagSq()
		if distToLightSq == 0 {
			return 0
		}
		lightNormal := lightPoint.Sub(s.Center).Scale(1 / s.Radius)
		cosine := math.Abs(toLight.Normalize().Dot(lightNormal))
		if cosine == 0 {
			return 0
		}
		return distToLightSq / (cosine * s.Area())
	}
	sinThetaMaxSq := r2 / distSq
	cosThetaMax := math.Sqrt(math.Max(0, 1-sinThetaMaxSq))
	return 1 / (2 * math.Pi * (1 - cosThetaMax))
}
