package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/photos/2024", "/photos/2024"},
		{"single trailing slash", "/photos/2024/", "/photos/2024"},
		{"multiple trailing slashes", "/photos/2024///", "/photos/2024"},
		{"root path", "/", "/"},
		{"relative path", "output", "output"},
		{"relative with slash", "output/", "output"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDirArg(tt.in))
		})
	}
}

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Inputs = []string{"/in"}
	cfg.OutputDir = "/out"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with input", func(*Config) {}, false},
		{"jpeg format", func(c *Config) { c.OutputFormat = "JPEG" }, false},
		{"webp format", func(c *Config) { c.OutputFormat = ".webp" }, false},
		{"heic is not an output", func(c *Config) { c.OutputFormat = "heic" }, true},
		{"empty format", func(c *Config) { c.OutputFormat = "" }, true},
		{"quality 1", func(c *Config) { c.Quality = 1 }, false},
		{"quality 100", func(c *Config) { c.Quality = 100 }, false},
		{"quality 0", func(c *Config) { c.Quality = 0 }, true},
		{"quality 101", func(c *Config) { c.Quality = 101 }, true},
		{"batch size zero", func(c *Config) { c.BatchSize = 0 }, true},
		{"batch size negative", func(c *Config) { c.BatchSize = -3 }, true},
		{"scale zero", func(c *Config) { c.Scale = 0 }, true},
		{"scale too large", func(c *Config) { c.Scale = 5 }, true},
		{"scale half", func(c *Config) { c.Scale = 0.5 }, false},
		{"negative timeout", func(c *Config) { c.TaskTimeout = -time.Second }, true},
		{"no timeout", func(c *Config) { c.TaskTimeout = 0 }, false},
		{"bad color mode", func(c *Config) { c.ColorMode = "rainbow" }, true},
		{"no inputs", func(c *Config) { c.Inputs = nil }, true},
		{"no inputs in check mode", func(c *Config) { c.Inputs = nil; c.CheckOnly = true }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_NormalizesFormat(t *testing.T) {
	cfg := validConfig()
	cfg.OutputFormat = ".PNG"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "png", cfg.OutputFormat)
}

func TestDefaultConfig_SaneDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "jpg", cfg.OutputFormat)
	assert.Equal(t, 85, cfg.Quality)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.True(t, cfg.Parallel, "parallel should default on")
	assert.False(t, cfg.Recursive)
	assert.False(t, cfg.KeepMetadata)
	assert.Equal(t, 1.0, cfg.Scale)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, ColorAuto, cfg.ColorMode)
}

func TestParseFlags_Basic(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseFlags(&cfg, []string{
		"-o", "/out/", "--output-format", "png", "-q", "70",
		"--keep-metadata", "--batch-size", "4", "--no-parallel", "-r",
		"--timeout", "30s", "/photos/",
	}, "test")
	require.NoError(t, err)

	assert.Equal(t, []string{"/photos"}, cfg.Inputs)
	assert.Equal(t, "/out", cfg.OutputDir)
	assert.Equal(t, "png", cfg.OutputFormat)
	assert.Equal(t, 70, cfg.Quality)
	assert.True(t, cfg.KeepMetadata)
	assert.Equal(t, 4, cfg.BatchSize)
	assert.False(t, cfg.Parallel)
	assert.True(t, cfg.Recursive)
	assert.Equal(t, 30*time.Second, cfg.TaskTimeout)
}

func TestParseFlags_NoParallelWinsOverParallel(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, ParseFlags(&cfg, []string{"--parallel", "--no-parallel", "-o", "x", "a.heic"}, "test"))
	assert.False(t, cfg.Parallel)
}

func TestParseFlags_FileListDefaultsOutputBesideFirstFile(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, ParseFlags(&cfg, []string{"/nonexistent/a.heic", "/other/b.heic"}, "test"))
	assert.Equal(t, []string{"/nonexistent/a.heic", "/other/b.heic"}, cfg.Inputs)
	assert.Equal(t, "/nonexistent", cfg.OutputDir)
}

func TestParseFlags_DirectoryDefaultsOutputToItself(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	require.NoError(t, ParseFlags(&cfg, []string{dir}, "test"))
	assert.Equal(t, dir, cfg.OutputDir)
}

func TestParseFlags_RequiresInput(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, ParseFlags(&cfg, []string{"-o", "/out"}, "test"))

	cfg = DefaultConfig()
	assert.NoError(t, ParseFlags(&cfg, []string{"--check"}, "test"))
}

func TestParseFlags_HelpAndVersion(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseFlags(&cfg, []string{"--help"}, "test")
	assert.True(t, errors.Is(err, flag.ErrHelp))

	cfg = DefaultConfig()
	err = ParseFlags(&cfg, []string{"-V"}, "test")
	assert.True(t, errors.Is(err, ErrVersion))
}

func TestParseFlags_UnknownFlag(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, ParseFlags(&cfg, []string{"--bogus", "a.heic"}, "test"))
}

func TestParseFlags_ConfigFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heicmaster.yaml")
	writeFile(t, path, `
output_format: webp
quality: 60
batch_size: 3
parallel: false
timeout: 1m
`)

	cfg := DefaultConfig()
	require.NoError(t, ParseFlags(&cfg, []string{"--config", path, "-q", "90", "-o", "/out", "a.heic"}, "test"))

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "webp", cfg.OutputFormat, "file value kept when no flag given")
	assert.Equal(t, 90, cfg.Quality, "flag overrides file")
	assert.Equal(t, 3, cfg.BatchSize)
	assert.False(t, cfg.Parallel)
	assert.Equal(t, time.Minute, cfg.TaskTimeout)
}

func TestFindConfigArg(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"none", []string{"-q", "80", "a.heic"}, ""},
		{"separate value", []string{"--config", "c.yaml", "a.heic"}, "c.yaml"},
		{"single dash", []string{"-config", "c.yaml"}, "c.yaml"},
		{"equals form", []string{"--config=c.yaml"}, "c.yaml"},
		{"after terminator", []string{"--", "--config", "c.yaml"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findConfigArg(tt.args))
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("all keys", func(t *testing.T) {
		path := filepath.Join(dir, "all.yaml")
		writeFile(t, path, `
output: /converted/
output_format: png
quality: 42
keep_metadata: true
scale: 0.5
batch_size: 7
parallel: false
recursive: true
timeout: 90s
verbose: true
color: never
log_file: /tmp/heic.log
`)
		cfg := DefaultConfig()
		require.NoError(t, LoadFile(path, &cfg))
		assert.Equal(t, "/converted", cfg.OutputDir)
		assert.Equal(t, "png", cfg.OutputFormat)
		assert.Equal(t, 42, cfg.Quality)
		assert.True(t, cfg.KeepMetadata)
		assert.Equal(t, 0.5, cfg.Scale)
		assert.Equal(t, 7, cfg.BatchSize)
		assert.False(t, cfg.Parallel)
		assert.True(t, cfg.Recursive)
		assert.Equal(t, 90*time.Second, cfg.TaskTimeout)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, ColorNever, cfg.ColorMode)
		assert.Equal(t, "/tmp/heic.log", cfg.LogFile)
	})

	t.Run("absent keys keep defaults", func(t *testing.T) {
		path := filepath.Join(dir, "partial.yaml")
		writeFile(t, path, "quality: 50\n")
		cfg := DefaultConfig()
		require.NoError(t, LoadFile(path, &cfg))
		assert.Equal(t, 50, cfg.Quality)
		assert.Equal(t, 10, cfg.BatchSize)
		assert.True(t, cfg.Parallel)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		writeFile(t, path, "")
		cfg := DefaultConfig()
		require.NoError(t, LoadFile(path, &cfg))
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("unknown key", func(t *testing.T) {
		path := filepath.Join(dir, "typo.yaml")
		writeFile(t, path, "qualty: 50\n")
		cfg := DefaultConfig()
		assert.Error(t, LoadFile(path, &cfg))
	})

	t.Run("bad timeout", func(t *testing.T) {
		path := filepath.Join(dir, "timeout.yaml")
		writeFile(t, path, "timeout: soon\n")
		cfg := DefaultConfig()
		assert.Error(t, LoadFile(path, &cfg))
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Error(t, LoadFile(filepath.Join(dir, "nope.yaml"), &cfg))
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
