package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/backmassage/heicmaster/internal/convert"
)

// touch creates an empty file (and its parent directories) under dir.
func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("heic-bytes"), 0o644))
	return p
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

// testLogger records every line so tests can assert on log output.
type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) add(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *testLogger) Info(f string, a ...any)    { l.add("INFO", f, a...) }
func (l *testLogger) Success(f string, a ...any) { l.add("SUCCESS", f, a...) }
func (l *testLogger) Warn(f string, a ...any)    { l.add("WARN", f, a...) }
func (l *testLogger) Error(f string, a ...any)   { l.add("ERROR", f, a...) }
func (l *testLogger) Debug(v bool, f string, a ...any) {
	if v {
		l.add("DEBUG", f, a...)
	}
}

func (l *testLogger) contains(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

// fakeConverter writes a small file for every job and fails jobs whose
// input contains failOn. It records the inputs it saw.
type fakeConverter struct {
	failOn string

	mu     sync.Mutex
	inputs []string
}

func (f *fakeConverter) Convert(_ context.Context, job convert.Job) error {
	f.mu.Lock()
	f.inputs = append(f.inputs, job.InputPath)
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(job.InputPath, f.failOn) {
		return fmt.Errorf("%w: cannot decode %s", convert.ErrDecode, job.InputPath)
	}
	return os.WriteFile(job.OutputPath, []byte("converted "+job.InputPath), 0o644)
}

func (f *fakeConverter) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.inputs...)
	sort.Strings(out)
	return out
}

func testRequest(outDir string) Request {
	return Request{Format: "jpg", OutputDir: outDir, Quality: 85}
}
