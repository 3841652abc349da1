package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/heicmaster/internal/config"
)

func newTestLogger(t *testing.T, cfg config.Config) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg.ColorMode = config.ColorNever
	l, err := NewLogger(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	var out, errOut bytes.Buffer
	l.SetOutput(&out, &errOut)
	return l, &out, &errOut
}

func TestLogger_Levels(t *testing.T) {
	l, out, errOut := newTestLogger(t, config.DefaultConfig())

	l.Info("scanning %s", "/photos")
	l.Success("converted %d", 3)
	l.Warn("skipped")
	l.Error("boom")

	assert.Contains(t, out.String(), "[INFO] scanning /photos")
	assert.Contains(t, out.String(), "[SUCCESS] converted 3")
	assert.Contains(t, out.String(), "[WARN] skipped")
	assert.NotContains(t, out.String(), "boom")
	assert.Contains(t, errOut.String(), "[ERROR] boom")
}

func TestLogger_DebugRequiresVerbose(t *testing.T) {
	l, out, _ := newTestLogger(t, config.DefaultConfig())

	l.Debug(false, "hidden")
	l.Debug(true, "shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[DEBUG] shown")
}

func TestNewLogger_WithFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "nested", "heicmaster.log")
	l, _, _ := newTestLogger(t, cfg)

	l.Info("to file")
	require.NoError(t, l.Close())

	b, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[INFO] to file")
}

func TestLogger_CloseTwice(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "x.log")
	l, _, _ := newTestLogger(t, cfg)
	require.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}
