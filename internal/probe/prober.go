package probe

import (
	"fmt"
	"image"
	"io"
	"os"

	// Register BMP, TIFF, JPEG and PNG header decoders.
	_ "github.com/disintegration/imaging"
	"github.com/jdeng/goheif"

	"github.com/backmassage/heicmaster/internal/formats"
	"github.com/backmassage/heicmaster/internal/metadata"
)

// Probe stats path and reads its image header. A file that exists but cannot
// be parsed still yields an Info, with an empty Decoder, next to the error.
func Probe(path string) (*Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	info := &Info{
		Path:   path,
		Format: formats.Ext(path),
		Size:   fi.Size(),
	}

	f, err := os.Open(path)
	if err != nil {
		return info, fmt.Errorf("probe %s: %w", path, err)
	}
	defer f.Close()

	var cfg image.Config
	if formats.IsHEIF(info.Format) {
		cfg, err = decodeHEIFConfig(f)
		if err == nil {
			info.Decoder = "heif"
			_, exifErr := metadata.ExtractHEIC(path)
			info.HasExif = exifErr == nil
		}
	} else {
		cfg, info.Decoder, err = image.DecodeConfig(f)
	}
	if err != nil {
		info.Decoder = ""
		return info, fmt.Errorf("probe %s: read header: %w", path, err)
	}
	info.Width, info.Height = cfg.Width, cfg.Height
	return info, nil
}

// decodeHEIFConfig converts a parser panic on malformed boxes into an error.
func decodeHEIFConfig(r io.Reader) (cfg image.Config, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed heif: %v", p)
		}
	}()
	return goheif.DecodeConfig(r)
}
