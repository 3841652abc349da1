// Package display formats sizes, durations and dimensions for log lines and
// the analyze table.
package display

import (
	"fmt"
	"time"
)

var byteSuffixes = []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// FormatBytes returns a human-readable size (B, KiB, MiB, ...).
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit && exp < len(byteSuffixes)-1; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %s", float64(n)/float64(div), byteSuffixes[exp])
}

// FormatBytesWithSign prefixes a size delta with "+ " or "- ".
func FormatBytesWithSign(n int64) string {
	switch {
	case n > 0:
		return "+ " + FormatBytes(n)
	case n < 0:
		return "- " + FormatBytes(-n)
	}
	return FormatBytes(0)
}

// FormatElapsed renders d rounded for humans: "850ms", "12.4s", "3m05s".
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Round(time.Second)
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%dm%02ds", m, s)
}

// FormatDimensions returns "WxH", or "?" when either side is unknown.
func FormatDimensions(w, h int) string {
	if w <= 0 || h <= 0 {
		return "?"
	}
	return fmt.Sprintf("%dx%d", w, h)
}

// FormatRate returns files per second over d ("0.0/s" for empty runs).
func FormatRate(files int, d time.Duration) string {
	if files == 0 || d <= 0 {
		return "0.0/s"
	}
	return fmt.Sprintf("%.1f/s", float64(files)/d.Seconds())
}
