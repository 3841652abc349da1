package term

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/heicmaster/internal/config"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { Configure(config.ColorNever) })

	Configure(config.ColorAlways)
	assert.True(t, Enabled())
	assert.NotEmpty(t, Green)

	Configure(config.ColorNever)
	assert.False(t, Enabled())
	assert.Empty(t, Red)
	assert.Empty(t, NC)
}

func TestResolve_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, resolve(config.ColorAuto))
	assert.True(t, resolve(config.ColorAlways), "explicit mode ignores NO_COLOR")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(nil))

	f, err := os.Create(filepath.Join(t.TempDir(), "plain"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTerminal(f))
}

func TestPaint(t *testing.T) {
	t.Cleanup(func() { Configure(config.ColorNever) })

	Configure(config.ColorNever)
	assert.Equal(t, "ok", Paint(Green, "ok"))

	Configure(config.ColorAlways)
	assert.Equal(t, "\033[1;92mok\033[0m", Paint(Green, "ok"))
	assert.Equal(t, "ok", Paint("", "ok"), "no color means no reset")
}
