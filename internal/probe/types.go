package probe

// Info describes one image file.
type Info struct {
	Path    string
	Format  string // Normalized extension of the file ("heic", "jpg", ...).
	Decoder string // Format name reported by the decoder; empty if undecodable.
	Size    int64
	Width   int
	Height  int
	HasExif bool // HEIC/HEIF only.
}

// Megapixels returns the pixel count in millions, or 0 when unknown.
func (i *Info) Megapixels() float64 {
	if i.Width <= 0 || i.Height <= 0 {
		return 0
	}
	return float64(i.Width) * float64(i.Height) / 1e6
}

// Decodable reports whether the header could be read.
func (i *Info) Decodable() bool {
	return i.Decoder != ""
}
