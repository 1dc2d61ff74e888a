// Package scene aggregates the built acceleration structure, the
// environment light and the camera into the single object the sampler
// and CLI host drive to render an image.
package scene

import (
	"github.com/jmoss/photontrace/pkg/accel"
	"github.com/jmoss/photontrace/pkg/camera"
	"github.com/jmoss/photontrace/pkg/integrator"
	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/sky"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

type Float = vecmath.Float

// Method selects which Integrator implementation a Scene builds.
type Method int

const (
	MethodPathTracing Method = iota
	MethodNaive
)

// Scene bundles everything the renderer needs: geometry (via a built
// BVH), the environment light, and the camera generating primary rays.
// It owns no rendering loop itself; pkg/sampler drives Integrator.Li
// across tiles and accumulates the result.
type Scene struct {
	BVH    *accel.BVH
	Sky    *sky.Sky
	Camera camera.Camera
	Width  int
	Height int
}

// New builds a Scene from a primitive list, an optional environment
// (nil disables it) and a camera, running the BVH build with cfg.
func New(prims []prim.Primitive, environment *sky.Sky, cam camera.Camera, width, height int, cfg accel.BuildConfig) *Scene {
	return &Scene{
		BVH:    accel.Build(prims, cfg),
		Sky:    environment,
		Camera: cam,
		Width:  width,
		Height: height,
	}
}

// Integrator builds the transport estimator named by method.
func (s *Scene) Integrator(method Method) integrator.Integrator {
	switch method {
	case MethodNaive:
		return integrator.NewNaive(s.BVH, s.Sky)
	default:
		return integrator.NewPathTracing(s.BVH, s.Sky)
	}
}
