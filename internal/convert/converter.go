package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	"github.com/disintegration/imaging"
	"github.com/jdeng/goheif"

	"github.com/backmassage/heicmaster/internal/formats"
	"github.com/backmassage/heicmaster/internal/metadata"
)

// Logger is the subset of logging.Logger used by Converter.
type Logger interface {
	Debug(verbose bool, format string, args ...any)
}

// Job describes a single file conversion.
type Job struct {
	InputPath    string
	OutputPath   string
	Format       string // Target extension, any case, with or without dot.
	Quality      int    // 1-100.
	KeepMetadata bool
}

// Options apply to every job a Converter runs.
type Options struct {
	Scale   float64 // Resize factor; 0 or 1 keeps the original size.
	Verbose bool
}

// Converter decodes, optionally rescales and re-encodes image files. It
// holds no per-job state and is safe for concurrent use.
type Converter struct {
	opts Options
	log  Logger
}

// New creates a Converter. log may be nil.
func New(opts Options, log Logger) *Converter {
	return &Converter{opts: opts, log: log}
}

// Convert runs job. The output file is written only after the image has been
// fully encoded and ctx is still live, so a cancelled job leaves whatever was
// at OutputPath untouched.
func (c *Converter) Convert(ctx context.Context, job Job) error {
	if !formats.IsOutput(job.Format) {
		return fmt.Errorf("%w: %q", ErrUnsupportedOutput, job.Format)
	}

	img, err := c.decode(job.InputPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if c.opts.Scale > 0 && c.opts.Scale != 1 {
		b := img.Bounds()
		w, h := ScaledSize(b.Dx(), b.Dy(), c.opts.Scale)
		c.debug("%s: scaling %dx%d -> %dx%d", job.InputPath, b.Dx(), b.Dy(), w, h)
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, job.Format, job.Quality); err != nil {
		if errors.Is(err, ErrUnsupportedOutput) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrEncode, job.OutputPath, err)
	}
	data := buf.Bytes()

	if job.KeepMetadata {
		data = c.withExif(job, data)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(job.OutputPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if job.KeepMetadata {
		if err := metadata.CopyTimestamps(job.InputPath, job.OutputPath); err != nil {
			c.debug("%s: %v", job.OutputPath, err)
		}
	}
	return nil
}

// decode reads HEIC/HEIF through goheif and everything else through
// imaging, which also applies the EXIF orientation tag.
func (c *Converter) decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer f.Close()

	var img image.Image
	if formats.IsHEIF(formats.Ext(path)) {
		img, err = goheif.Decode(f)
	} else {
		img, err = imaging.Decode(f, imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return img, nil
}

// withExif copies the source EXIF into JPEG output. Missing or unusable
// metadata is not a conversion failure.
func (c *Converter) withExif(job Job, encoded []byte) []byte {
	if !formats.IsJPEG(job.Format) {
		c.debug("%s: EXIF is only embedded in JPEG output", job.OutputPath)
		return encoded
	}
	if !formats.IsHEIF(formats.Ext(job.InputPath)) {
		return encoded
	}
	exif, err := metadata.ExtractHEIC(job.InputPath)
	if err != nil {
		c.debug("%s: no EXIF copied: %v", job.InputPath, err)
		return encoded
	}
	out, err := metadata.InjectJPEG(encoded, exif)
	if err != nil {
		c.debug("%s: no EXIF copied: %v", job.InputPath, err)
		return encoded
	}
	return out
}

func (c *Converter) debug(format string, args ...any) {
	if c.log != nil {
		c.log.Debug(c.opts.Verbose, format, args...)
	}
}
