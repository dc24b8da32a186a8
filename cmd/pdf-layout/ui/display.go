package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/spherical/pdf-layout/internal/domain"
)

// Init applies the global color preference.
func Init(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

// Warning prints a yellow warning line.
func Warning(w io.Writer, format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(w, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Error prints a red error line.
func Error(w io.Writer, format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(w, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Summary prints the end-of-run statistics.
func Summary(w io.Writer, outputDir string, stats domain.ProcessingStats) {
	color.New(color.FgGreen, color.Bold).Fprintf(w, "✓ Converted %d page(s)\n", stats.PagesProcessed)
	KeyValue(w, "Output", outputDir)
	KeyValue(w, "Text spans", fmt.Sprintf("%d", stats.TextSpans))
	KeyValue(w, "Images", fmt.Sprintf("%d", stats.Images))
	if stats.SkippedImages > 0 {
		KeyValue(w, "Skipped images", color.YellowString("%d", stats.SkippedImages))
	}
	KeyValue(w, "Time", FormatDuration(stats.TotalTime))
}

// KeyValue prints an indented key-value pair.
func KeyValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %s: %s\n", color.CyanString(key), value)
}

// FormatDuration formats a duration for humans, keeping sub-second runs
// readable.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	d = d.Round(time.Second)

	minutes := d / time.Minute
	seconds := (d - minutes*time.Minute) / time.Second
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
