// Package metadata carries EXIF and file timestamps from a HEIC/HEIF source
// over to its converted output.
package metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/jdeng/goheif"
)

// exifHeader prefixes the TIFF structure inside a JPEG APP1 segment.
var exifHeader = []byte("Exif\x00\x00")

var (
	tiffLittle = []byte("II*\x00")
	tiffBig    = []byte("MM\x00*")
)

// maxAPP1Payload is the largest payload a single JPEG segment can carry
// (the 16-bit length field counts itself).
const maxAPP1Payload = 0xFFFF - 2

var (
	// ErrNoExif is returned when the source carries no EXIF block.
	ErrNoExif = errors.New("no exif data")
	// ErrNotJPEG is returned when InjectJPEG is given data without an SOI marker.
	ErrNotJPEG = errors.New("not a jpeg stream")
	// ErrExifTooLarge is returned when the EXIF block does not fit one APP1 segment.
	ErrExifTooLarge = errors.New("exif block exceeds one APP1 segment")
)

// ExtractHEIC reads the EXIF item of a HEIC/HEIF file and returns it in APP1
// form: "Exif\0\0" followed by the TIFF structure.
func ExtractHEIC(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	raw, err := goheif.ExtractExif(f)
	if err != nil {
		return nil, fmt.Errorf("extract exif from %s: %w", path, err)
	}
	return Normalize(raw)
}

// Normalize converts an EXIF block as stored in a HEIF item (4-byte
// big-endian offset to the TIFF header, then the payload) or as a bare TIFF
// structure into APP1 form. Data already in APP1 form is returned unchanged.
func Normalize(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, ErrNoExif
	}
	if bytes.HasPrefix(raw, exifHeader) {
		return raw, nil
	}
	if isTIFF(raw) {
		return withHeader(raw), nil
	}
	if len(raw) >= 4 {
		off := int(binary.BigEndian.Uint32(raw[:4]))
		if off >= 0 && 4+off < len(raw) {
			payload := raw[4+off:]
			if bytes.HasPrefix(payload, exifHeader) {
				return payload, nil
			}
			if isTIFF(payload) {
				return withHeader(payload), nil
			}
		}
		// Some encoders write the offset but leave "Exif\0\0" in front of it.
		if payload := raw[4:]; bytes.HasPrefix(payload, exifHeader) {
			return payload, nil
		}
	}
	return nil, fmt.Errorf("%w: unrecognized exif layout", ErrNoExif)
}

// InjectJPEG returns a copy of jpeg with exif inserted as an APP1 segment
// directly after the SOI marker. exif must be in APP1 form (see Normalize).
func InjectJPEG(jpeg, exif []byte) ([]byte, error) {
	if len(jpeg) < 2 || jpeg[0] != 0xFF || jpeg[1] != 0xD8 {
		return nil, ErrNotJPEG
	}
	if len(exif) > maxAPP1Payload {
		return nil, fmt.Errorf("%w (%d bytes)", ErrExifTooLarge, len(exif))
	}

	out := make([]byte, 0, len(jpeg)+len(exif)+4)
	out = append(out, 0xFF, 0xD8, 0xFF, 0xE1)
	out = binary.BigEndian.AppendUint16(out, uint16(len(exif)+2))
	out = append(out, exif...)
	out = append(out, jpeg[2:]...)
	return out, nil
}

func isTIFF(b []byte) bool {
	return bytes.HasPrefix(b, tiffLittle) || bytes.HasPrefix(b, tiffBig)
}

func withHeader(tiff []byte) []byte {
	out := make([]byte, 0, len(exifHeader)+len(tiff))
	out = append(out, exifHeader...)
	return append(out, tiff...)
}
