package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/backmassage/heicmaster/internal/formats"
)

var (
	// ErrDirectoryNotFound is returned when a scanned root does not exist.
	ErrDirectoryNotFound = errors.New("directory not found")
	// ErrNotADirectory is returned when a scanned root is a regular file.
	ErrNotADirectory = errors.New("not a directory")
)

// Scan lists the files under root. Without recursive only direct children
// are returned; with it every descendant file is. Directories are never
// returned. The result is sorted lexicographically. Symlinked directories
// are not followed.
func Scan(root string, recursive bool) ([]string, error) {
	if err := checkDir(root); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// FilterByExtension keeps the paths whose extension is in allowed,
// preserving order. Matching ignores case, and allowed entries may carry a
// leading dot.
func FilterByExtension(paths, allowed []string) []string {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[formats.Normalize(a)] = true
	}
	var out []string
	for _, p := range paths {
		if set[formats.Ext(p)] {
			out = append(out, p)
		}
	}
	return out
}

func checkDir(root string) error {
	fi, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDirectoryNotFound, root)
		}
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, root)
	}
	return nil
}
