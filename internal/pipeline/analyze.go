package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/heicmaster/internal/config"
	"github.com/backmassage/heicmaster/internal/display"
	"github.com/backmassage/heicmaster/internal/formats"
	"github.com/backmassage/heicmaster/internal/probe"
	"github.com/backmassage/heicmaster/internal/term"
)

// fileRow holds the probed per-file data for the analysis table.
type fileRow struct {
	Name   string
	Format string
	Dims   string
	MP     float64
	Size   int64
	Exif   bool
	// Bytes per megapixel; 0 when dimensions are unknown.
	Density float64
}

// Analyze probes the inputs without converting them and writes a table of
// dimensions, sizes and EXIF presence to w. Files whose bytes-per-megapixel
// fall outside the interquartile fences are flagged.
func Analyze(ctx context.Context, cfg *config.Config, log Logger, w io.Writer) error {
	files, err := collectInputs(cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Warn("No HEIC/HEIF files to analyze")
		return nil
	}

	log.Info("Analyzing %d file(s)", len(files))
	isTTY := false
	if f, ok := w.(*os.File); ok {
		isTTY = term.IsTerminal(f)
	}

	var rows []fileRow
	var densities []float64
	skipped := 0
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			if isTTY {
				clearProgress(w)
			}
			log.Warn("Interrupted")
			return err
		}
		printProgress(w, isTTY, i+1, len(files), skipped, filepath.Base(path))

		info, err := probe.Probe(path)
		if err != nil || !info.Decodable() {
			skipped++
			if isTTY {
				clearProgress(w)
			}
			log.Warn("Skip (probe failed): %s", filepath.Base(path))
			continue
		}

		row := fileRow{
			Name:   filepath.Base(path),
			Format: info.Format,
			Dims:   display.FormatDimensions(info.Width, info.Height),
			MP:     info.Megapixels(),
			Size:   info.Size,
			Exif:   info.HasExif,
		}
		if row.MP > 0 {
			row.Density = float64(info.Size) / row.MP
			densities = append(densities, row.Density)
		}
		rows = append(rows, row)
	}
	if isTTY {
		clearProgress(w)
	}

	if len(rows) == 0 {
		log.Warn("No files could be probed")
		return nil
	}

	bounds := computeStats(densities)
	printAnalysisTable(w, rows, bounds)
	printAnalysisSummary(log, rows, bounds)
	return nil
}

// collectInputs mirrors Run's input handling: one directory is scanned and
// filtered, anything else is taken as a file list.
func collectInputs(cfg *config.Config) ([]string, error) {
	if dir, ok := directoryInput(cfg.Inputs); ok {
		all, err := Scan(dir, cfg.Recursive)
		if err != nil {
			return nil, err
		}
		return FilterByExtension(all, formats.InputFormats()), nil
	}
	return cfg.Inputs, nil
}

// iqrBounds holds the IQR-based fences for outlier classification.
type iqrBounds struct {
	q1, q3    float64
	outlierLo float64 // Q1 - 1.5*IQR
	outlierHi float64 // Q3 + 1.5*IQR
	extremeLo float64 // Q1 - 3.0*IQR
	extremeHi float64 // Q3 + 3.0*IQR
	valid     bool
}

func computeStats(vals []float64) iqrBounds {
	if len(vals) < 4 {
		return iqrBounds{}
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1
	return iqrBounds{
		q1:        q1,
		q3:        q3,
		outlierLo: q1 - 1.5*iqr,
		outlierHi: q3 + 1.5*iqr,
		extremeLo: q1 - 3.0*iqr,
		extremeHi: q3 + 3.0*iqr,
		valid:     iqr > 0,
	}
}

// classify returns "" (normal), "outlier", or "extreme".
func (b *iqrBounds) classify(v float64) string {
	if !b.valid || v <= 0 {
		return ""
	}
	if v < b.extremeLo || v > b.extremeHi {
		return "extreme"
	}
	if v < b.outlierLo || v > b.outlierHi {
		return "outlier"
	}
	return ""
}

func printAnalysisTable(w io.Writer, rows []fileRow, b iqrBounds) {
	nameW, dimW, sizeW := len("File"), len("Dimensions"), len("Size")
	for _, r := range rows {
		nameW = max(nameW, len(r.Name))
		dimW = max(dimW, len(r.Dims))
		sizeW = max(sizeW, len(display.FormatBytes(r.Size)))
	}
	nameW = min(nameW, 50)

	header := fmt.Sprintf("  %-*s  %-6s  %-*s  %7s  %-*s  %-4s",
		nameW, "File", "Format", dimW, "Dimensions", "MP", sizeW, "Size", "EXIF")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "  "+strings.Repeat("─", len(header)-2))

	for _, r := range rows {
		name := r.Name
		if len(name) > nameW {
			name = name[:nameW-1] + "…"
		}
		exif := "no"
		if r.Exif {
			exif = "yes"
		}
		class := b.classify(r.Density)
		// Pad before coloring so escape bytes do not count toward width.
		sizeCell := colorPad(display.FormatBytes(r.Size), sizeW, class)
		fmt.Fprintf(w, "  %-*s  %-6s  %-*s  %7.1f  %s  %-4s %s\n",
			nameW, name, r.Format, dimW, r.Dims, r.MP, sizeCell, exif, formatFlag(class))
	}
	fmt.Fprintln(w)
}

func printAnalysisSummary(log Logger, rows []fileRow, b iqrBounds) {
	var outliers, extremes, withExif int
	var total int64
	for _, r := range rows {
		total += r.Size
		if r.Exif {
			withExif++
		}
		switch b.classify(r.Density) {
		case "extreme":
			extremes++
		case "outlier":
			outliers++
		}
	}

	log.Info("Analyzed %d file(s), %s total, %d with EXIF", len(rows), display.FormatBytes(total), withExif)
	if b.valid {
		log.Info("  Size per megapixel IQR: %s - %s",
			display.FormatBytes(int64(b.q1)), display.FormatBytes(int64(b.q3)))
	}
	if outliers > 0 {
		log.Warn("  %d outlier(s) flagged [*]", outliers)
	}
	if extremes > 0 {
		log.Error("  %d extreme outlier(s) flagged [!]", extremes)
	}
	if outliers == 0 && extremes == 0 {
		log.Success("  No outliers detected")
	}
}

func classColor(class string) string {
	switch class {
	case "extreme":
		return term.Red
	case "outlier":
		return term.Yellow
	}
	return ""
}

func formatFlag(class string) string {
	switch class {
	case "extreme":
		return term.Paint(term.Red, "[!]")
	case "outlier":
		return term.Paint(term.Yellow, "[*]")
	}
	return ""
}

func colorPad(s string, width int, class string) string {
	return term.Paint(classColor(class), fmt.Sprintf("%-*s", width, s))
}

// printProgress overwrites a single status line on a TTY and is a no-op
// otherwise.
func printProgress(w io.Writer, isTTY bool, current, total, skipped int, name string) {
	if !isTTY {
		return
	}
	status := fmt.Sprintf("  Probing [%d/%d] %d%% ", current, total, current*100/total)
	if skipped > 0 {
		status += fmt.Sprintf("(%d skipped) ", skipped)
	}
	if len(name) > 40 {
		name = name[:39] + "…"
	}
	status += name
	if len(status) < 80 {
		status += strings.Repeat(" ", 80-len(status))
	}
	fmt.Fprintf(w, "\r%s", status)
}

func clearProgress(w io.Writer) {
	fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", 80))
}

// percentile computes the p-th percentile of sorted using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
