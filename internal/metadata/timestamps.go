package metadata

import (
	"fmt"
	"os"
)

// CopyTimestamps sets dst's access and modification times to src's
// modification time.
func CopyTimestamps(src, dst string) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	mtime := fi.ModTime()
	if err := os.Chtimes(dst, mtime, mtime); err != nil {
		return fmt.Errorf("set times on %s: %w", dst, err)
	}
	return nil
}
