package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into conversion, batch, display, and utility.
// Negated flags (e.g. --no-parallel) are applied after Parse so Config defaults hold unless set.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrVersion is returned by [ParseFlags] after --version has been printed.
// Callers should exit successfully. --help returns [flag.ErrHelp].
var ErrVersion = errors.New("version requested")

// ParseFlags parses args (without the program name) into cfg. When
// --config is present the YAML file is applied first, so explicit flags
// always win over file values.
func ParseFlags(cfg *Config, args []string, version string) error {
	if path := findConfigArg(args); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return err
		}
		cfg.ConfigFile = path
	}

	fs := flag.NewFlagSet("heicmaster", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var negated negatedFlags

	defineConversionFlags(fs, cfg)
	defineBatchFlags(fs, cfg, &negated)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, cfg, &negated)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(os.Stderr, version)
		}
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(os.Stderr, version)
		return flag.ErrHelp
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "heicmaster v"+version)
		return ErrVersion
	}

	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
type negatedFlags struct {
	parallel    bool
	noParallel  bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineConversionFlags registers output, format, quality, metadata and scale flags.
func defineConversionFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Func("output", "Output directory", func(s string) error {
		cfg.OutputDir = NormalizeDirArg(s)
		return nil
	})
	fs.Func("o", "Same as --output", func(s string) error {
		cfg.OutputDir = NormalizeDirArg(s)
		return nil
	})
	fs.StringVar(&cfg.OutputFormat, "output-format", cfg.OutputFormat, "Output format: jpg | png | webp | bmp | tiff")
	fs.StringVar(&cfg.OutputFormat, "f", cfg.OutputFormat, "Same as --output-format")
	fs.IntVar(&cfg.Quality, "quality", cfg.Quality, "Output quality 1-100")
	fs.IntVar(&cfg.Quality, "q", cfg.Quality, "Same as --quality")
	fs.BoolVar(&cfg.KeepMetadata, "keep-metadata", cfg.KeepMetadata, "Preserve EXIF (JPEG) and file timestamps")
	fs.Float64Var(&cfg.Scale, "scale", cfg.Scale, "Resize factor applied before encoding")
}

// defineBatchFlags registers batch size, parallelism, recursion and timeout.
func defineBatchFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Files per scheduling chunk")
	fs.IntVar(&cfg.BatchSize, "b", cfg.BatchSize, "Same as --batch-size")
	fs.BoolVar(&n.parallel, "parallel", false, "Convert files of a chunk concurrently (default)")
	fs.BoolVar(&n.noParallel, "no-parallel", false, "Convert files one at a time")
	fs.BoolVar(&cfg.Recursive, "recursive", cfg.Recursive, "Scan input directory recursively")
	fs.BoolVar(&cfg.Recursive, "r", cfg.Recursive, "Same as --recursive")
	fs.DurationVar(&cfg.TaskTimeout, "timeout", cfg.TaskTimeout, "Per-file conversion deadline (0 = none)")
}

// defineDisplayFlags registers --color, --no-color, verbose, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
}

// defineUtilityFlags registers --check, --analyze, --config, --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.BoolVar(&cfg.AnalyzeOnly, "analyze", false, "Probe inputs and print a report")
	// Already applied by findConfigArg; registered so Parse accepts it.
	fs.String("config", "", "YAML config file")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated and override flag values into cfg.
// --no-parallel wins over --parallel when both are given.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.parallel {
		cfg.Parallel = true
	}
	if n.noParallel {
		cfg.Parallel = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs stores the inputs and derives a default output
// directory when none was given.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly {
		return nil
	}
	if len(args) == 0 {
		return errors.New("need an input directory or at least one input file")
	}
	cfg.Inputs = make([]string, len(args))
	for i, a := range args {
		cfg.Inputs[i] = NormalizeDirArg(a)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaultOutputDir(cfg.Inputs[0])
	}
	return nil
}

// defaultOutputDir writes next to the inputs: into the directory itself in
// directory mode, or beside the first file in file-list mode.
func defaultOutputDir(firstInput string) string {
	if fi, err := os.Stat(firstInput); err == nil && fi.IsDir() {
		return firstInput
	}
	return filepath.Dir(firstInput)
}

// findConfigArg pre-scans args for --config so the file can be applied
// before flag defaults are bound.
func findConfigArg(args []string) string {
	for i, a := range args {
		if a == "--" {
			return ""
		}
		name := strings.TrimLeft(a, "-")
		if len(a)-len(name) == 0 || len(a)-len(name) > 2 {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// printUsage writes the help text to w. Column-aligned for readability.
func printUsage(w io.Writer, version string) {
	const col1 = 30 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "heicmaster v" + version + " - batch HEIC/HEIF image converter"},
		{"", ""},
		{"  heicmaster [OPTIONS] <input_dir>", ""},
		{"  heicmaster [OPTIONS] <file> [file...]", ""},
		{"", ""},
		{"Conversion", ""},
		{"  -o, --output <dir>", "Output directory (default: next to inputs)"},
		{"  -f, --output-format <ext>", "jpg | jpeg | png | webp | bmp | tif | tiff (default: jpg)"},
		{"  -q, --quality <1-100>", "Output quality (default: 85)"},
		{"  --keep-metadata", "Preserve EXIF (JPEG) and file timestamps"},
		{"  --scale <factor>", "Resize before encoding (default: 1.0)"},
		{"", ""},
		{"Batch", ""},
		{"  -b, --batch-size <n>", "Files per scheduling chunk (default: 10)"},
		{"  --parallel", "Convert files of a chunk concurrently (default)"},
		{"  --no-parallel", "Convert files one at a time"},
		{"  -r, --recursive", "Scan input directory recursively"},
		{"  --timeout <duration>", "Per-file deadline, 0 disables (default: 5m)"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  --config <file.yaml>", "Load defaults from YAML (flags win)"},
		{"  --analyze", "Probe inputs and print a report"},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "System diagnostics (decoders, encoders)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}
