package check

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/heicmaster/internal/config"
)

type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordLogger) add(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *recordLogger) Info(f string, a ...any)    { l.add("INFO", f, a...) }
func (l *recordLogger) Success(f string, a ...any) { l.add("SUCCESS", f, a...) }
func (l *recordLogger) Warn(f string, a ...any)    { l.add("WARN", f, a...) }
func (l *recordLogger) Error(f string, a ...any)   { l.add("ERROR", f, a...) }
func (l *recordLogger) Debug(v bool, f string, a ...any) {
	if v {
		l.add("DEBUG", f, a...)
	}
}

func (l *recordLogger) count(prefix string) int {
	n := 0
	for _, line := range l.lines {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

func TestProbeWritable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ProbeWritable(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "sentinel must be removed")
}

func TestProbeWritable_MissingDir(t *testing.T) {
	assert.Error(t, ProbeWritable(filepath.Join(t.TempDir(), "missing")))
}

func TestCheckDeps(t *testing.T) {
	for _, f := range []string{"jpg", "png", "bmp", "tiff", "webp"} {
		t.Run(f, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.OutputFormat = f
			assert.NoError(t, CheckDeps(&cfg))
		})
	}

	cfg := config.DefaultConfig()
	cfg.OutputFormat = "gif"
	assert.ErrorIs(t, CheckDeps(&cfg), ErrEncoderUnavailable)
}

func TestRunCheck(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	log := &recordLogger{}

	RunCheck(&cfg, log)

	assert.Zero(t, log.count("ERROR"), "lines: %v", log.lines)
	// One success per output format plus the output directory.
	assert.Equal(t, 8, log.count("SUCCESS"))
}
