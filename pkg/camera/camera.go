// Package camera implements the external Camera collaborator: a
// thin-lens pinhole camera producing jittered, time-stamped rays.
package camera

import (
	"math"
	"math/rand"

	"github.com/jmoss/photontrace/pkg/vecmath"
)

type Float = vecmath.Float
type Vec3 = vecmath.Vec3

// Camera is the external interface the integrator/sampler drive: given a
// pair of normalized film coordinates and an RNG for lens/shutter
// jitter, it returns a primary ray.
type Camera interface {
	GetRay(s, t Float, rng *rand.Rand) vecmath.Ray
}

// SimpleCamera is a thin-lens camera with adjustable vertical field of
// view, aperture (depth of field) and shutter time window.
type SimpleCamera struct {
	origin            Vec3
	horizontal        Vec3
	vertical          Vec3
	lowerLeftCorner   Vec3
	u, v, w           Vec3
	lensRadius        Float
	time0, time1      Float
}

// NewSimpleCamera builds a camera looking from lookFrom to lookAt, with
// vup establishing the up direction, vfov in degrees, aspect = width/
// height, aperture the lens diameter (0 disables depth of field) and
// focusDist the distance to the plane held in perfect focus.
func NewSimpleCamera(lookFrom, lookAt, vup Vec3, vfov, aspect, aperture, focusDist, time0, time1 Float) *SimpleCamera {
	theta := vfov * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := aspect * halfHeight

	w := lookFrom.Sub(lookAt).Normalize()
	u := vup.Cross(w).Normalize()
	v := w.Cross(u)

	origin := lookFrom
	horizontal := u.Scale(2 * halfWidth * focusDist)
	vertical := v.Scale(2 * halfHeight * focusDist)
	lowerLeft := origin.
		Sub(horizontal.Scale(0.5)).
		Sub(vertical.Scale(0.5)).
		Sub(w.Scale(focusDist))

	return &SimpleCamera{
		origin:          origin,
		horizontal:      horizontal,
		vertical:        vertical,
		lowerLeftCorner: lowerLeft,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      aperture / 2,
		time0:           time0,
		time1:           time1,
	}
}

func (c *SimpleCamera) GetRay(s, t Float, rng *rand.Rand) vecmath.Ray {
	var offset Vec3
	if c.lensRadius > 0 {
		rd := randomInUnitDisk(rng).Scale(c.lensRadius)
		offset = c.u.Scale(rd.X).Add(c.v.Scale(rd.Y))
	}
	origin := c.origin.Add(offset)
	target := c.lowerLeftCorner.Add(c.horizontal.Scale(s)).Add(c.vertical.Scale(t))
	direction := target.Sub(origin)

	time := c.time0
	if c.time1 > c.time0 {
		time = c.time0 + rng.Float64()*(c.time1-c.time0)
	}
	return vecmath.NewRay(origin, direction, time)
}

func randomInUnitDisk(rng *rand.Rand) Vec3 {
	for {
		p := Vec3{X: 2*rng.Float64() - 1, Y: 2*rng.Float64() - 1}
		if p.MagSq() < 1 {
			return p
		}
	}
}
