package texture

import (
	"image"
	"math"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Image is an image lookup keyed by the UV that Value receives: u wraps
// across the width and v wraps from the bottom row to the top; the point
// argument is not used. Value does not derive a UV from a direction;
// DirectionToUV is the separate helper for that.
type Image struct {
	img           image.Image
	width, height int
}

// NewImageFromDecoded wraps an already-decoded image (the caller uses
// image.Decode, which dispatches to whichever codec registered itself —
// PNG and JPEG via the standard library, BMP/TIFF via golang.org/x/image
// blank imports above).
func NewImageFromDecoded(img image.Image) *Image {
	b := img.Bounds()
	return &Image{img: img, width: b.Dx(), height: b.Dy()}
}

func (im *Image) Value(uv Vec2, _ Vec3) Vec3 {
	u := uv.X - math.Floor(uv.X)
	v := 1 - (uv.Y - math.Floor(uv.Y))

	x := int(u * Float(im.width))
	y := int(v * Float(im.height))
	if x >= im.width {
		x = im.width - 1
	}
	if y >= im.height {
		y = im.height - 1
	}
	r, g, b, _ := im.img.At(im.img.Bounds().Min.X+x, im.img.Bounds().Min.Y+y).RGBA()
	const maxu16 = 65535.0
	return Vec3{X: Float(r) / maxu16, Y: Float(g) / maxu16, Z: Float(b) / maxu16}
}

func (im *Image) RequiresUV() bool { return true }

// DirectionToUV maps a world direction to an equirectangular UV with
// phi = atan2(y, x) + pi and theta = acos(z). pkg/sky's own mapping wraps
// atan2 into [0, 2*pi) instead, so the two differ by half a turn in u.
func DirectionToUV(dir Vec3) Vec2 {
	phi := math.Atan2(dir.Y, dir.X) + math.Pi
	theta := math.Acos(clamp(dir.Z, -1, 1))
	return Vec2{X: phi / (2 * math.Pi), Y: theta / math.Pi}
}

func clamp(v, lo, hi Float) Float {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
