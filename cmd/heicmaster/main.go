// Command heicmaster is the CLI entrypoint for the batch HEIC/HEIF converter.
//
// It parses flags, validates configuration, and either runs system
// diagnostics (--check), the input report (--analyze), or a conversion batch.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/heicmaster/internal/check"
	"github.com/backmassage/heicmaster/internal/config"
	"github.com/backmassage/heicmaster/internal/display"
	"github.com/backmassage/heicmaster/internal/logging"
	"github.com/backmassage/heicmaster/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Phase 1: Bootstrap. No logger yet, so errors go straight to stderr.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, args, version); err != nil {
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, config.ErrVersion) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "heicmaster: %v\n", err)
		fmt.Fprintln(os.Stderr, "Try 'heicmaster --help' for usage.")
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "heicmaster: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "heicmaster: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available.
	display.PrintBanner(os.Stdout, version)
	if cfg.ConfigFile != "" {
		log.Debug(cfg.Verbose, "Loaded config file %s", cfg.ConfigFile)
	}

	if cfg.CheckOnly {
		check.RunCheck(&cfg, log)
		return 0
	}

	// Phase 3: Cancel on SIGINT/SIGTERM. In-flight files are abandoned and
	// recorded as interrupted; their reserved outputs are removed.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, stopping batch")
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.AnalyzeOnly {
		if err := pipeline.Analyze(ctx, &cfg, log, os.Stdout); err != nil {
			log.Error("%v", err)
			return 1
		}
		return 0
	}

	log.Info("=== heicmaster v%s (%s) ===", version, commit)

	// Fail fast if the chosen encoder does not work.
	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	// Phase 4: Run the batch.
	_, err = pipeline.Run(ctx, &cfg, log)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pipeline.ErrFilesFailed):
		return 1
	default:
		log.Error("%v", err)
		return 1
	}
}
