package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML layout. Pointer fields distinguish "absent"
// from the zero value so only keys present in the file override defaults.
type fileConfig struct {
	Output       *string  `yaml:"output"`
	OutputFormat *string  `yaml:"output_format"`
	Quality      *int     `yaml:"quality"`
	KeepMetadata *bool    `yaml:"keep_metadata"`
	Scale        *float64 `yaml:"scale"`
	BatchSize    *int     `yaml:"batch_size"`
	Parallel     *bool    `yaml:"parallel"`
	Recursive    *bool    `yaml:"recursive"`
	Timeout      *string  `yaml:"timeout"`
	Verbose      *bool    `yaml:"verbose"`
	Color        *string  `yaml:"color"`
	LogFile      *string  `yaml:"log_file"`
}

// LoadFile reads a YAML config file and overlays every key it sets onto cfg.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		// An empty file decodes to io.EOF; treat it as "no overrides".
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc.apply(cfg, path)
}

func (fc *fileConfig) apply(cfg *Config, path string) error {
	if fc.Output != nil {
		cfg.OutputDir = NormalizeDirArg(*fc.Output)
	}
	if fc.OutputFormat != nil {
		cfg.OutputFormat = *fc.OutputFormat
	}
	if fc.Quality != nil {
		cfg.Quality = *fc.Quality
	}
	if fc.KeepMetadata != nil {
		cfg.KeepMetadata = *fc.KeepMetadata
	}
	if fc.Scale != nil {
		cfg.Scale = *fc.Scale
	}
	if fc.BatchSize != nil {
		cfg.BatchSize = *fc.BatchSize
	}
	if fc.Parallel != nil {
		cfg.Parallel = *fc.Parallel
	}
	if fc.Recursive != nil {
		cfg.Recursive = *fc.Recursive
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return fmt.Errorf("parse config %s: timeout: %w", path, err)
		}
		cfg.TaskTimeout = d
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	if fc.Color != nil {
		cfg.ColorMode = ColorMode(*fc.Color)
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	return nil
}
