package prim

import (
	"math"

	"github.com/jmoss/photontrace/pkg/vecmath"
)

// Triangle is intersected with the watertight/shear-transform algorithm
// (Woop et al.), which guarantees no cracks along shared edges and
// carries a conservative position error bound derived from the floating
// point error accumulated by the edge-function evaluation.
type Triangle struct {
	P0, P1, P2 Vec3
	N0, N1, N2 Vec3 // per-vertex normals, for smooth shading
	UV0, UV1, UV2 Vec2
	HasUV      bool
	Material   Material
	normal     Vec3 // flat face normal, cached
	bbox       vecmath.AABB
}

func NewTriangle(p0, p1, p2 Vec3, material Material) *Triangle {
	n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
	return newTriangle(p0, p1, p2, n, n, n, Vec2{}, Vec2{}, Vec2{}, false, material)
}

func NewTriangleWithNormals(p0, p1, p2, n0, n1, n2 Vec3, material Material) *Triangle {
	return newTriangle(p0, p1, p2, n0, n1, n2, Vec2{}, Vec2{}, Vec2{}, false, material)
}

func NewTriangleWithUVs(p0, p1, p2 Vec3, uv0, uv1, uv2 Vec2, material Material) *Triangle {
	n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
	return newTriangle(p0, p1, p2, n, n, n, uv0, uv1, uv2, true, material)
}

func NewTriangleWithNormalsAndUVs(p0, p1, p2, n0, n1, n2 Vec3, uv0, uv1, uv2 Vec2, material Material) *Triangle {
	return newTriangle(p0, p1, p2, n0, n1, n2, uv0, uv1, uv2, true, material)
}

func newTriangle(p0, p1, p2, n0, n1, n2 Vec3, uv0, uv1, uv2 Vec2, hasUV bool, material Material) *Triangle {
	min := vecmath.MinVec(vecmath.MinVec(p0, p1), p2)
	max := vecmath.MaxVec(vecmath.MaxVec(p0, p1), p2)
	// Degenerate (zero-thickness on some axis) triangles still need a
	// non-degenerate box for the BVH, so pad by a small epsilon.
	pad := Vec3{X: 1e-6, Y: 1e-6, Z: 1e-6}
	min = min.Sub(pad)
	max = max.Add(pad)
	return &Triangle{
		P0: p0, P1: p1, P2: p2,
		N0: n0, N1: n1, N2: n2,
		UV0: uv0, UV1: uv1, UV2: uv2,
		HasUV:    hasUV,
		Material: material,
		normal:   p1.Sub(p0).Cross(p2.Sub(p0)).Normalize(),
		bbox:     vecmath.NewAABB(min, max),
	}
}

func (tr *Triangle) Intersect(ray vecmath.Ray, tMin, tMax Float) (SurfaceIntersection, bool) {
	maxAxis := ray.Direction.MaxAbsAxis()
	swapZ := func(v Vec3) Vec3 {
		if maxAxis == 0 || maxAxis == 1 {
			v.X, v.Z = v.Z, v.X
		}
		return v
	}

	p0t := swapZ(tr.P0.Sub(ray.Origin))
	p1t := swapZ(tr.P1.Sub(ray.Origin))
	p2t := swapZ(tr.P2.Sub(ray.Origin))

	p0t.X += ray.Shear.X * p0t.Z
	p0t.Y += ray.Shear.Y * p0t.Z
	p1t.X += ray.Shear.X * p1t.Z
	p1t.Y += ray.Shear.Y * p1t.Z
	p2t.X += ray.Shear.X * p2t.Z
	p2t.Y += ray.Shear.Y * p2t.Z

	e0 := p1t.X*p2t.Y - p1t.Y*p2t.X
	e1 := p2t.X*p0t.Y - p2t.Y*p0t.X
	e2 := p0t.X*p1t.Y - p0t.Y*p1t.X

	if (e0 < 0 || e1 < 0 || e2 < 0) && (e0 > 0 || e1 > 0 || e2 > 0) {
		return SurfaceIntersection{}, false
	}
	det := e0 + e1 + e2
	if det == 0 {
		return SurfaceIntersection{}, false
	}

	p0t.Z *= ray.Shear.Z
	p1t.Z *= ray.Shear.Z
	p2t.Z *= ray.Shear.Z
	tScaled := e0*p0t.Z + e1*p1t.Z + e2*p2t.Z

	if det < 0 && (tScaled >= 0) {
		return SurfaceIntersection{}, false
	}
	if det > 0 && (tScaled <= 0) {
		return SurfaceIntersection{}, false
	}

	invDet := 1 / det
	b0 := e0 * invDet
	b1 := e1 * invDet
	b2 := e2 * invDet
	t := tScaled * invDet

	if t <= tMin || t >= tMax {
		return SurfaceIntersection{}, false
	}

	// Conservative bound on t's floating-point error, per the watertight
	// algorithm: a hit closer than delta_t cannot be trusted as real and
	// must be rejected rather than risk shadow acne / self-intersection.
	maxZt := math.Max(math.Abs(p0t.Z), math.Max(math.Abs(p1t.Z), math.Abs(p2t.Z)))
	deltaZ := vecmath.Gamma(3) * maxZt

	maxXt := math.Max(math.Abs(p0t.X), math.Max(math.Abs(p1t.X), math.Abs(p2t.X)))
	maxYt := math.Max(math.Abs(p0t.Y), math.Max(math.Abs(p1t.Y), math.Abs(p2t.Y)))
	deltaX := vecmath.Gamma(5) * (maxXt + maxZt)
	deltaY := vecmath.Gamma(5) * (maxYt + maxZt)

	deltaE := 2 * (vecmath.Gamma(2)*maxXt*maxYt + deltaY*maxXt + deltaX*maxYt)

	maxE := math.Max(math.Abs(e0), math.Max(math.Abs(e1), math.Abs(e2)))

	deltaT := 3 * (vecmath.Gamma(3)*maxE*maxZt + deltaE*maxZt + deltaZ*maxE) * math.Abs(invDet)

	if t < deltaT {
		return SurfaceIntersection{}, false
	}

	// conservative position error bound: gamma(7) barycentric-interpolation
	// term plus the gamma(6) rounding term on the P2 contribution, per the
	// watertight algorithm's error analysis.
	point := tr.P0.Scale(b0).Add(tr.P1.Scale(b1)).Add(tr.P2.Scale(b2))
	xAbsSum := math.Abs(b0*tr.P0.X) + math.Abs(b1*tr.P1.X) + math.Abs(b2*tr.P2.X)
	yAbsSum := math.Abs(b0*tr.P0.Y) + math.Abs(b1*tr.P1.Y) + math.Abs(b2*tr.P2.Y)
	zAbsSum := math.Abs(b0*tr.P0.Z) + math.Abs(b1*tr.P1.Z) + math.Abs(b2*tr.P2.Z)
	pointErr := Vec3{X: xAbsSum, Y: yAbsSum, Z: zAbsSum}.Scale(vecmath.Gamma(7)).
		Add(Vec3{X: math.Abs(b2 * tr.P2.X), Y: math.Abs(b2 * tr.P2.Y), Z: math.Abs(b2 * tr.P2.Z)}.Scale(vecmath.Gamma(6)))

	shading := tr.N0.Scale(b0).Add(tr.N1.Scale(b1)).Add(tr.N2.Scale(b2)).Normalize()
	out := true
	if shading.Dot(ray.Direction) > 0 {
		out = false
		shading = shading.Negate()
	}

	hit := Hit{
		T:      t,
		Point:  point,
		Error:  pointErr,
		Normal: shading,
		Out:    out,
	}
	if tr.HasUV && tr.Material.RequiresUV() {
		u := tr.UV0.X*b0 + tr.UV1.X*b1 + tr.UV2.X*b2
		v := tr.UV0.Y*b0 + tr.UV1.Y*b1 + tr.UV2.Y*b2
		hit.UV = Vec2{X: u, Y: v}
		hit.HasUV = true
	}
	return SurfaceIntersection{Hit: hit, Material: tr.Material}, true
}

func (tr *Triangle) BoundingBox() vecmath.AABB { return tr.bbox }

func (tr *Triangle) Area() Float {
	return tr.P1.Sub(tr.P0).Cross(tr.P2.Sub(tr.P0)).Length() * 0.5
}

func (tr *Triangle) MaterialIsLight() bool { return tr.Material.IsLight() }

func (tr *Triangle) Sample(u1, u2 Float) Vec3 {
	su0 := math.Sqrt(u1)
	b0 := 1 - su0
	b1 := u2 * su0
	b2 := 1 - b0 - b1
	return tr.P0.Scale(b0).Add(tr.P1.Scale(b1)).Add(tr.P2.Scale(b2))
}

func (tr *Triangle) SampleVisibleFromPoint(viewPoint Vec3, u1, u2 Float) Vec3 {
	return tr.Sample(u1, u2).Sub(viewPoint).Normalize()
}

// ScatteringPDF converts uniform-area sampling into a solid-angle pdf.
func (tr *Triangle) ScatteringPDF(hit Hit, wo, lightPoint Vec3) Float {
	toLight := lightPoint.Sub(hit.Point)
	distSq := toLight.MagSq()
	if distSq == 0 {
		return 0
	}
	wi := toLight.Normalize()
	cosine := math.Abs(wi.Dot(tr.normal))
	if cosine < 1e-8 {
		return 0
	}
	return distSq / (cosine * tr.Area())
}
