// Package imagesink writes a rendered frame out to disk in the format
// the CLI host was asked for, converting the sampler's linear-radiance
// accumulator into a gamma-corrected 8-bit image.Image first.
package imagesink

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"

	"github.com/jmoss/photontrace/pkg/vecmath"
)

type Float = vecmath.Float
type Vec3 = vecmath.Vec3

// Format names an output container.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
	FormatBMP  Format = "bmp"
)

// ErrUnsupportedFormat is returned for formats this sink recognizes by
// name but cannot encode (EXR and TIFF output are read-only concerns
// elsewhere in the pipeline; writing them is out of scope here).
var ErrUnsupportedFormat = errors.New("imagesink: unsupported output format")

// ParseFormat maps a CLI/file-extension string onto a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	case "bmp":
		return FormatBMP, nil
	case "tiff", "tif", "exr":
		return Format(s), ErrUnsupportedFormat
	default:
		return Format(s), fmt.Errorf("imagesink: unrecognized format %q", s)
	}
}

// ToImage converts a row-major linear-radiance buffer into an 8-bit
// sRGB-gamma-corrected image.NRGBA, clamping each channel to [0,1]
// before the gamma curve is applied.
func ToImage(pixels []Vec3, width, height int, gamma Float) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if gamma <= 0 {
		gamma = 2.2
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := pixels[y*width+x].Clamp(0, 1).GammaCorrect(gamma)
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(c.X*255 + 0.5),
				G: uint8(c.Y*255 + 0.5),
				B: uint8(c.Z*255 + 0.5),
				A: 255,
			})
		}
	}
	return img
}

// Write encodes img to w in the given format.
func Write(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
