// Package ui renders human-facing progress on stderr. Nothing here writes to
// stdout, which carries the JSON report.
package ui

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/spherical/pdf-layout/internal/domain"
)

// PageProgress tracks pages converted so far.
type PageProgress struct {
	w        io.Writer
	bar      *progressbar.ProgressBar
	finished bool
}

// NewPageProgress creates a progress display; the bar is created once the
// page count is known.
func NewPageProgress(w io.Writer) *PageProgress {
	return &PageProgress{w: w}
}

// Handle consumes pipeline events. It is meant to be passed to
// Service.OnEvent.
func (p *PageProgress) Handle(event domain.Event) {
	switch event.Type {
	case domain.EventStart:
		p.bar = progressbar.NewOptions(event.TotalPages,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Converting pages"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerHead:    "█",
				SaucerPadding: "░",
				BarStart:      "│",
				BarEnd:        "│",
			}),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("pages"),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(p.w)
			}),
			progressbar.OptionSetRenderBlankState(true),
		)
	case domain.EventPageComplete:
		if p.bar != nil {
			_ = p.bar.Set(event.PageNumber)
		}
	case domain.EventImageSkipped:
		if p.bar != nil && !p.finished {
			fmt.Fprintln(p.w)
		}
		if skipped, ok := event.Payload.(domain.SkippedImage); ok {
			Warning(p.w, "page %d: skipped image %d: %s", event.PageNumber, skipped.Ref, skipped.Error)
		}
	case domain.EventComplete:
		p.Finish()
	}
}

// Finish completes the bar if one is running.
func (p *PageProgress) Finish() {
	if p.bar == nil || p.finished {
		return
	}
	_ = p.bar.Finish()
	p.finished = true
}
