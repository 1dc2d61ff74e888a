// Package texture implements the Source contract materials use to look
// up a colour at a surface point: solid colour, checker, linear ramp,
// Perlin noise, and image-backed (decoded via golang.org/x/image codecs).
package texture

import (
	"math"

	"github.com/jmoss/photontrace/pkg/vecmath"
)

type Float = vecmath.Float
type Vec3 = vecmath.Vec3
type Vec2 = vecmath.Vec2

// Source is the external collaborator materials query for a base colour.
type Source interface {
	Value(uv Vec2, point Vec3) Vec3
	RequiresUV() bool
}

// Solid is a constant colour everywhere.
type Solid struct {
	Colour Vec3
}

func NewSolid(c Vec3) Solid           { return Solid{Colour: c} }
func (s Solid) Value(Vec2, Vec3) Vec3 { return s.Colour }
func (s Solid) RequiresUV() bool      { return false }

// Checker alternates between two sub-textures based on the sign of
// sin(10x)*sin(10y)*sin(10z).
type Checker struct {
	Odd, Even Source
}

func NewChecker(odd, even Source) Checker { return Checker{Odd: odd, Even: even} }

func (c Checker) Value(uv Vec2, p Vec3) Vec3 {
	sines := math.Sin(10*p.X) * math.Sin(10*p.Y) * math.Sin(10*p.Z)
	if sines < 0 {
		return c.Odd.Value(uv, p)
	}
	return c.Even.Value(uv, p)
}

func (c Checker) RequiresUV() bool { return c.Odd.RequiresUV() || c.Even.RequiresUV() }

// Linear interpolates between two colours along world-space Y, between
// yMin and yMax.
type Linear struct {
	Bottom, Top Vec3
	YMin, YMax  Float
}

func (l Linear) Value(_ Vec2, p Vec3) Vec3 {
	t := (p.Y - l.YMin) / (l.YMax - l.YMin)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return l.Bottom.Scale(1 - t).Add(l.Top.Scale(t))
}

func (l Linear) RequiresUV() bool { return false }
