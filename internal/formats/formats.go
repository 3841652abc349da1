// Package formats is the registry of supported input and output image
// formats, their MIME types, and extension normalization.
//
// All lookups are case-insensitive: "HEIC", ".heic" and "heic" are the same
// format.
package formats

import (
	"path/filepath"
	"strings"
)

// Input formats the converter decodes.
var inputFormats = []string{"heic", "heif"}

// Output formats the converter encodes, in display order.
var outputFormats = []string{"jpg", "jpeg", "png", "bmp", "tif", "tiff", "webp"}

var mimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"webp": "image/webp",
	"heic": "image/heic",
	"heif": "image/heif",
}

// mimeExtensions maps a MIME type back to its preferred extension.
var mimeExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
	"image/webp": "webp",
	"image/heic": "heic",
	"image/heif": "heif",
}

// Normalize lowercases ext and strips surrounding whitespace and a leading dot.
func Normalize(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

// Ext returns the normalized extension of path ("" when it has none).
func Ext(path string) string {
	return Normalize(filepath.Ext(path))
}

// InputFormats returns the supported input extensions.
func InputFormats() []string {
	return append([]string(nil), inputFormats...)
}

// OutputFormats returns the supported output extensions.
func OutputFormats() []string {
	return append([]string(nil), outputFormats...)
}

// IsInput reports whether path has a supported input extension.
func IsInput(path string) bool {
	return contains(inputFormats, Ext(path))
}

// IsHEIF reports whether format (an extension in any case, with or without
// dot) belongs to the HEIF container family.
func IsHEIF(format string) bool {
	return contains(inputFormats, Normalize(format))
}

// IsOutput reports whether format is a supported output format.
func IsOutput(format string) bool {
	return contains(outputFormats, Normalize(format))
}

// IsJPEG reports whether format encodes to JPEG.
func IsJPEG(format string) bool {
	f := Normalize(format)
	return f == "jpg" || f == "jpeg"
}

// MimeType returns the MIME type for ext, or "application/octet-stream".
func MimeType(ext string) string {
	if m, ok := mimeTypes[Normalize(ext)]; ok {
		return m
	}
	return "application/octet-stream"
}

// ExtensionForMime returns the preferred extension for a MIME type, or "".
func ExtensionForMime(mime string) string {
	return mimeExtensions[strings.ToLower(strings.TrimSpace(mime))]
}

func contains(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
