package naming

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/heicmaster/internal/formats"
)

// Stem returns the base name of path without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CandidatePath returns the n-th candidate output path for input:
//
//	n == 0: <outputDir>/<stem>.<format>
//	n >= 1: <outputDir>/<stem>_<n>.<format>
func CandidatePath(input, format, outputDir string, n int) string {
	name := Stem(input)
	if n > 0 {
		name += "_" + strconv.Itoa(n)
	}
	return filepath.Join(outputDir, name+"."+formats.Normalize(format))
}
