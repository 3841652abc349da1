package convert

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/backmassage/heicmaster/internal/formats"
)

// Encode writes img to w in format at the given quality (1-100).
// JPEG and WebP are lossy and use quality directly; PNG maps it to a
// compression effort; BMP and TIFF ignore it.
func Encode(w io.Writer, img image.Image, format string, quality int) error {
	quality = clampQuality(quality)
	switch formats.Normalize(format) {
	case "jpg", "jpeg":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case "png":
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(PNGCompression(quality)))
	case "bmp":
		return imaging.Encode(w, img, imaging.BMP)
	case "tif", "tiff":
		return imaging.Encode(w, img, imaging.TIFF)
	case "webp":
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedOutput, format)
}

// PNGCompression maps quality to a zlib effort. PNG is lossless, so a high
// quality asks for a fast encode and a low one for the smallest file.
func PNGCompression(quality int) png.CompressionLevel {
	switch {
	case quality >= 90:
		return png.BestSpeed
	case quality <= 30:
		return png.BestCompression
	default:
		return png.DefaultCompression
	}
}

// ScaledSize returns the target dimensions for a w x h image scaled by
// factor, never smaller than 1x1.
func ScaledSize(w, h int, factor float64) (int, int) {
	sw := int(float64(w)*factor + 0.5)
	sh := int(float64(h)*factor + 0.5)
	return max(sw, 1), max(sh, 1)
}

func clampQuality(q int) int {
	return min(max(q, 1), 100)
}
