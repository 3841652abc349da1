package naming

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// maxCandidates bounds the suffix search so a pathological directory cannot
// spin the resolver forever.
const maxCandidates = 100000

// ErrNoFreeName is returned when every candidate up to the search limit is taken.
var ErrNoFreeName = errors.New("no free output name")

// OutputResolver picks collision-free output paths and reserves them with a
// zero-byte placeholder. Safe for concurrent use.
type OutputResolver struct {
	mu       sync.Mutex
	reserved map[string]struct{}
}

// NewOutputResolver creates a ready-to-use resolver.
func NewOutputResolver() *OutputResolver {
	return &OutputResolver{reserved: make(map[string]struct{})}
}

// Resolve returns a path under outputDir for input converted to format that
// did not exist before the call. The path exists as an empty file when
// Resolve returns; the converter overwrites it, or [OutputResolver.Release]
// removes it after a failure.
func (r *OutputResolver) Resolve(input, format, outputDir string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for n := 0; n < maxCandidates; n++ {
		candidate := CandidatePath(input, format, outputDir, n)
		f, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return "", fmt.Errorf("reserve %s: %w", candidate, err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(candidate)
			return "", fmt.Errorf("reserve %s: %w", candidate, err)
		}
		r.reserved[candidate] = struct{}{}
		return candidate, nil
	}
	return "", fmt.Errorf("%w for %s in %s", ErrNoFreeName, Stem(input), outputDir)
}

// Release deletes a path previously returned by Resolve. Paths this
// resolver did not reserve are left alone.
func (r *OutputResolver) Release(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reserved[path]; !ok {
		return nil
	}
	delete(r.reserved, path)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("release %s: %w", path, err)
	}
	return nil
}

// Commit marks path as finished. The file stays on disk and a later
// Release for it is a no-op.
func (r *OutputResolver) Commit(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reserved, path)
}

// Reserved reports how many paths are currently held by the resolver.
func (r *OutputResolver) Reserved() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reserved)
}
