// Package config holds runtime configuration: defaults, optional YAML file
// loading, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/backmassage/heicmaster/internal/formats"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Limits enforced by [Config.Validate].
const (
	MinQuality = 1
	MaxQuality = 100
	MaxScale   = 4.0
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by [LoadFile], then mutated by [ParseFlags] before
// being passed (by pointer) to packages that need it.
type Config struct {
	// Paths (inputs from positional args).
	Inputs    []string
	OutputDir string // Default: input directory, or the first file's directory.

	// Conversion.
	OutputFormat string  // Default: "jpg". Lowercase, no leading dot.
	Quality      int     // Default: 85. 1-100, meaning depends on format.
	KeepMetadata bool    // Copy EXIF (JPEG only) and file timestamps.
	Scale        float64 // Default: 1.0. Resize factor applied before encoding.

	// Batch scheduling.
	BatchSize   int           // Default: 10. Files per scheduling chunk.
	Parallel    bool          // Default: true. Cleared by --no-parallel.
	Recursive   bool          // Directory mode only.
	TaskTimeout time.Duration // Default: 5m. 0 disables the per-file deadline.

	// Display and logging.
	Verbose     bool
	ColorMode   ColorMode // Default: "auto".
	LogFile     string    // Optional log file path.
	CheckOnly   bool      // Run --check diagnostics and exit.
	AnalyzeOnly bool      // Probe inputs and print a table, no conversion.

	ConfigFile string // Optional YAML file applied before flags.
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// [LoadFile] and [ParseFlags] apply overrides.
func DefaultConfig() Config {
	return Config{
		OutputFormat: "jpg",
		Quality:      85,
		KeepMetadata: false,
		Scale:        1.0,
		BatchSize:    10,
		Parallel:     true,
		Recursive:    false,
		TaskTimeout:  5 * time.Minute,
		ColorMode:    ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks value ranges and enum fields, normalizing OutputFormat in
// place. When not in CheckOnly mode it also requires at least one input.
func (c *Config) Validate() error {
	c.OutputFormat = formats.Normalize(c.OutputFormat)
	if !formats.IsOutput(c.OutputFormat) {
		return fmt.Errorf("unsupported output format %q (use %s)",
			c.OutputFormat, strings.Join(formats.OutputFormats(), ", "))
	}
	if c.Quality < MinQuality || c.Quality > MaxQuality {
		return fmt.Errorf("quality must be between %d and %d (got %d)", MinQuality, MaxQuality, c.Quality)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive (got %d)", c.BatchSize)
	}
	if c.Scale <= 0 || c.Scale > MaxScale {
		return fmt.Errorf("scale must be in (0, %.0f] (got %g)", MaxScale, c.Scale)
	}
	if c.TaskTimeout < 0 {
		return errors.New("timeout must not be negative")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.CheckOnly {
		return nil
	}
	if len(c.Inputs) == 0 {
		return errors.New("need at least one input directory or file")
	}
	return nil
}
