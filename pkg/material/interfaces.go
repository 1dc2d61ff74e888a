// Package material implements the BSDF contract: Lambertian diffuse,
// perfect-reflect metal, dielectric refraction, Trowbridge-Reitz/GGX
// microfacet reflection, and emissive surfaces.
package material

import (
	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/texture"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

type Float = vecmath.Float
type Vec3 = vecmath.Vec3

// Material is the contract every surface shader implements; it is
// defined in pkg/prim (see there for the reasoning) and re-exported here
// for callers that only import pkg/material.
type Material = prim.Material

// textured is embedded by every material that looks its base colour up
// from a texture.Source.
type textured struct {
	Albedo texture.Source
}

func (t textured) RequiresUV() bool { return t.Albedo.RequiresUV() }
