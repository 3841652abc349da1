// Package convert turns one HEIC/HEIF (or any imaging-decodable) file into
// one output image.
//
// A conversion decodes the input, optionally rescales it, encodes into
// memory in the target format and writes the result in a single call. EXIF
// is carried into JPEG output when requested; other formats only keep the
// file timestamps.
//
// Files:
//   - converter.go: Converter, Job, decode and write path
//   - encoder.go:   per-format encoders and quality mapping
//   - errors.go:    sentinel errors
package convert
