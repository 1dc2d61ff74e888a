package texture

import (
	"math"
	"math/rand"
)

const perlinPoints = 256

// Perlin is gradient noise over three independently permuted axes, with
// trilinear Hermite-smoothed interpolation between the eight lattice
// corners surrounding a point, matching the classic "Ray Tracing in One
// Weekend" construction (256 random unit vectors, one permutation table
// per axis).
type Perlin struct {
	randVec  [perlinPoints]Vec3
	permX    [perlinPoints]int
	permY    [perlinPoints]int
	permZ    [perlinPoints]int
	scale    Float
	baseColour Vec3
}

func NewPerlin(rng *rand.Rand, scale Float, baseColour Vec3) *Perlin {
	p := &Perlin{scale: scale, baseColour: baseColour}
	for i := 0; i < perlinPoints; i++ {
		theta := rng.Float64() * math.Pi
		phi := 2 * rng.Float64() * math.Pi
		sinT := math.Sin(theta)
		p.randVec[i] = Vec3{X: sinT * math.Cos(phi), Y: sinT * math.Sin(phi), Z: math.Cos(theta)}
	}
	p.permX = perlinGeneratePerm(rng)
	p.permY = perlinGeneratePerm(rng)
	p.permZ = perlinGeneratePerm(rng)
	return p
}

func perlinGeneratePerm(rng *rand.Rand) [perlinPoints]int {
	var perm [perlinPoints]int
	for i := range perm {
		perm[i] = i
	}
	for i := perlinPoints - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

func (p *Perlin) noise(point Vec3) Float {
	u := point.X - math.Floor(point.X)
	v := point.Y - math.Floor(point.Y)
	w := point.Z - math.Floor(point.Z)

	i := int(math.Floor(point.X))
	j := int(math.Floor(point.Y))
	k := int(math.Floor(point.Z))

	var c [2][2][2]Vec3
	for di := 0; di < 2; di++ {
		for dj := 0; dj < 2; dj++ {
			for dk := 0; dk < 2; dk++ {
				idx := p.permX[(i+di)&255] ^ p.permY[(j+dj)&255] ^ p.permZ[(k+dk)&255]
				c[di][dj][dk] = p.randVec[idx]
			}
		}
	}
	return perlinInterp(c, u, v, w)
}

func perlinInterp(c [2][2][2]Vec3, u, v, w Float) Float {
	uu := u * u * (3 - 2*u)
	vv := v * v * (3 - 2*v)
	ww := w * w * (3 - 2*w)
	var accum Float
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				weight := Vec3{X: u - Float(i), Y: v - Float(j), Z: w - Float(k)}
				fi, fj, fk := Float(i), Float(j), Float(k)
				accum += (fi*uu + (1-fi)*(1-uu)) *
					(fj*vv + (1-fj)*(1-vv)) *
					(fk*ww + (1-fk)*(1-ww)) *
					c[i][j][k].Dot(weight)
			}
		}
	}
	return accum
}

// Turbulence sums several octaves of noise at doubling frequency and
// halving amplitude.
func (p *Perlin) turbulence(point Vec3, depth int) Float {
	var accum Float
	weight := 1.0
	cur := point
	for i := 0; i < depth; i++ {
		accum += weight * p.noise(cur)
		weight *= 0.5
		cur = cur.Scale(2)
	}
	return math.Abs(accum)
}

func (p *Perlin) Value(_ Vec2, point Vec3) Vec3 {
	t := 0.5 * (1 + math.Sin(p.scale*point.Z+10*p.turbulence(point, 7)))
	return p.baseColour.Scale(t)
}

func (p *Perlin) RequiresUV() bool { return false }
