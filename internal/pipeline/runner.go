package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/backmassage/heicmaster/internal/config"
	"github.com/backmassage/heicmaster/internal/convert"
	"github.com/backmassage/heicmaster/internal/display"
)

// OptionsFromConfig extracts the scheduling options from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ChunkSize:   cfg.BatchSize,
		Parallel:    cfg.Parallel,
		TaskTimeout: cfg.TaskTimeout,
	}
}

// RequestFromConfig extracts the per-file conversion settings from cfg.
func RequestFromConfig(cfg *config.Config) Request {
	return Request{
		Format:       cfg.OutputFormat,
		OutputDir:    cfg.OutputDir,
		Quality:      cfg.Quality,
		KeepMetadata: cfg.KeepMetadata,
		Verbose:      cfg.Verbose,
	}
}

// Run is the CLI batch entry point. A single directory input is scanned;
// anything else is treated as an explicit file list. The returned error is
// nil, ErrFilesFailed, or a setup error.
func Run(ctx context.Context, cfg *config.Config, log Logger) (Stats, error) {
	conv := convert.New(convert.Options{Scale: cfg.Scale, Verbose: cfg.Verbose}, log)
	return runWith(ctx, cfg, conv, log)
}

func runWith(ctx context.Context, cfg *config.Config, conv Converter, log Logger) (Stats, error) {
	ctrl, err := NewController(conv, OptionsFromConfig(cfg), log)
	if err != nil {
		return Stats{}, err
	}
	req := RequestFromConfig(cfg)

	logBatchHeader(cfg, log)

	if dir, ok := directoryInput(cfg.Inputs); ok {
		err = ctrl.ProcessDirectory(ctx, dir, cfg.Recursive, req)
	} else {
		err = ctrl.ProcessFileList(ctx, cfg.Inputs, req)
	}

	stats := ctrl.Stats()
	if err == nil || errors.Is(err, ErrFilesFailed) {
		logSummary(log, stats)
	}
	return stats, err
}

// directoryInput reports whether inputs is exactly one existing directory.
func directoryInput(inputs []string) (string, bool) {
	if len(inputs) != 1 {
		return "", false
	}
	fi, err := os.Stat(inputs[0])
	if err != nil || !fi.IsDir() {
		return "", false
	}
	return inputs[0], true
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log Logger) {
	mode := "parallel"
	if !cfg.Parallel {
		mode = "sequential"
	}
	log.Info("Output: %s (%s, quality %d)", cfg.OutputDir, strings.ToUpper(cfg.OutputFormat), cfg.Quality)
	log.Info("Scheduling: %s, %d file(s) per chunk", mode, cfg.BatchSize)
	if cfg.TaskTimeout > 0 {
		log.Debug(cfg.Verbose, "Per-file timeout: %s", cfg.TaskTimeout)
	}
	if cfg.Scale != 1 {
		log.Info("Scale: %.2fx", cfg.Scale)
	}
	if cfg.KeepMetadata {
		log.Info("Metadata: keep EXIF (JPEG output) and file timestamps")
	}
	if cfg.Recursive {
		log.Debug(cfg.Verbose, "Recursive directory scan enabled")
	}
}

func logSummary(log Logger, s Stats) {
	log.Info("=== Summary (batch %s) ===", s.BatchID)
	log.Info("Converted: %d  Failed: %d  Time: %s  Rate: %s",
		s.Processed, s.Failed, display.FormatElapsed(s.Elapsed), display.FormatRate(s.Total(), s.Elapsed))

	if s.Processed > 0 {
		log.Info("Size: %s -> %s", display.FormatBytes(s.InputBytes), display.FormatBytes(s.OutputBytes))
		switch saved := s.SpaceSaved(); {
		case saved > 0:
			log.Success("Space saved: %s", display.FormatBytes(saved))
		case saved < 0:
			log.Warn("Outputs larger than inputs by %s", display.FormatBytes(-saved))
		}
	}

	if s.Failed > 0 {
		log.Error("%d file(s) failed:", s.Failed)
		for _, f := range s.FailedFiles {
			log.Error("  %s", f)
		}
	} else if s.Processed > 0 {
		log.Success("All files converted")
	}
}
