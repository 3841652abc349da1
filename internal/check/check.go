// Package check provides system diagnostics (--check mode), the pre-batch
// encoder validation (CheckDeps) and the output directory write probe.
package check

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/backmassage/heicmaster/internal/config"
	"github.com/backmassage/heicmaster/internal/convert"
	"github.com/backmassage/heicmaster/internal/formats"
)

// ErrEncoderUnavailable is returned by CheckDeps when a test encode of the
// configured output format fails.
var ErrEncoderUnavailable = errors.New("output encoder unavailable")

// Logger is the minimal logging interface needed by RunCheck.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
	Debug(bool, string, ...any)
}

// RunCheck prints supported formats, runs a test encode and decode for every
// output format, and probes the output directory when one is configured.
// Informational only; it does not stop on failure.
func RunCheck(cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")
	log.Info("Go runtime: %s %s/%s, %d CPU(s)", runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	log.Info("Input formats:  %s", strings.Join(formats.InputFormats(), ", "))
	log.Info("Output formats: %s", strings.Join(formats.OutputFormats(), ", "))
	log.Info("HEIC/HEIF decoder: goheif (libde265, linked in)")

	for _, f := range formats.OutputFormats() {
		if err := testEncode(f, cfg.Quality); err != nil {
			log.Error("%-4s encoder: %v", f, err)
			continue
		}
		log.Success("%-4s encoder works (%s)", f, formats.MimeType(f))
	}

	if cfg.BatchSize > runtime.NumCPU()*4 {
		log.Warn("Batch size %d is well above CPU count %d; memory use grows with batch size",
			cfg.BatchSize, runtime.NumCPU())
	}

	if cfg.OutputDir != "" {
		if err := ProbeWritable(cfg.OutputDir); err != nil {
			log.Error("Output directory: %v", err)
		} else {
			log.Success("Output directory writable: %s", cfg.OutputDir)
		}
	}
}

// CheckDeps runs a test encode of the configured output format so an
// unusable encoder fails the run before any file is touched.
func CheckDeps(cfg *config.Config) error {
	if err := testEncode(cfg.OutputFormat, cfg.Quality); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncoderUnavailable, cfg.OutputFormat, err)
	}
	return nil
}

// ProbeWritable verifies dir accepts new files by creating and deleting a
// uniquely named sentinel file.
func ProbeWritable(dir string) error {
	sentinel := filepath.Join(dir, ".write_test-"+uuid.NewString())
	f, err := os.OpenFile(sentinel, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%s not writable: %w", dir, err)
	}
	closeErr := f.Close()
	if err := os.Remove(sentinel); err != nil {
		return fmt.Errorf("remove %s: %w", sentinel, err)
	}
	if closeErr != nil {
		return fmt.Errorf("%s not writable: %w", dir, closeErr)
	}
	return nil
}

// testEncode encodes a small gradient in format and decodes it back.
func testEncode(format string, quality int) error {
	var buf bytes.Buffer
	if err := convert.Encode(&buf, testImage(), format, quality); err != nil {
		return err
	}
	if formats.Normalize(format) == "webp" {
		if !bytes.HasPrefix(buf.Bytes(), []byte("RIFF")) {
			return errors.New("webp output missing RIFF header")
		}
		return nil
	}
	img, err := imaging.Decode(&buf)
	if err != nil {
		return fmt.Errorf("decode test image: %w", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		return fmt.Errorf("test image came back %dx%d", b.Dx(), b.Dy())
	}
	return nil
}

func testImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 96, A: 255})
		}
	}
	return img
}
