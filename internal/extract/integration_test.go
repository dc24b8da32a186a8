package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf-layout/internal/config"
	"github.com/spherical/pdf-layout/internal/observability"
	"github.com/spherical/pdf-layout/internal/pdf"
	"github.com/spherical/pdf-layout/internal/pdf/pdftest"
)

// TestPDFToLayoutConversion runs the complete flow against MuPDF.
func TestPDFToLayoutConversion(t *testing.T) {
	samplePDF := os.Getenv("PDF_LAYOUT_SAMPLE_PDF")
	if samplePDF == "" {
		t.Skip("PDF_LAYOUT_SAMPLE_PDF not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	backend, err := pdf.NewBackend()
	require.NoError(t, err)

	out := t.TempDir()
	logger := observability.NewLogger(observability.LogConfig{Level: "debug", Format: "console", NoColor: true})
	svc := NewService(backend, config.DefaultConfig(), logger)

	report, err := svc.Process(ctx, samplePDF, out)
	require.NoError(t, err)

	require.Equal(t, report.Total, len(report.Pages))
	require.Greater(t, report.Total, 0)

	for _, page := range report.Pages {
		assert.Greater(t, page.Width, 0.0)
		assert.FileExists(t, filepath.Join(out, "images", BackgroundFilename(page.PageNumber)))

		for _, span := range page.Blocks {
			assert.GreaterOrEqual(t, span.Width, 0.0)
			assert.GreaterOrEqual(t, span.Height, 0.0)
		}
		for _, img := range page.Images {
			assert.FileExists(t, filepath.Join(out, "images", filepath.Base(img.Src)))
		}
		t.Logf("page %d: %d spans, %d images", page.PageNumber, len(page.Blocks), len(page.Images))
	}

	// A second run over the same output directory overwrites in place.
	again, err := svc.Process(ctx, samplePDF, out)
	require.NoError(t, err)
	assert.Equal(t, report.Total, again.Total)
}

func TestProcess_ImageDrawnTwiceWithMuPDF(t *testing.T) {
	backend, err := pdf.NewBackend()
	require.NoError(t, err)

	out := t.TempDir()
	svc := NewService(backend, config.DefaultConfig(), nil)

	report, err := svc.Process(context.Background(), pdftest.WriteSample(t, t.TempDir()), out)
	require.NoError(t, err)
	require.Equal(t, 1, report.Total)

	page := report.Pages[0]
	assert.FileExists(t, filepath.Join(out, "images", "page_1.png"))

	require.Len(t, page.Images, 2)
	first, second := page.Images[0], page.Images[1]
	assert.NotEqual(t, first.Src, second.Src)
	assert.True(t, strings.HasPrefix(first.Src, "/uploads/page_1_img_1_1."), first.Src)
	assert.True(t, strings.HasPrefix(second.Src, "/uploads/page_1_img_1_2."), second.Src)

	assert.InDelta(t, pdftest.FirstPlacement.X0, first.X, 0.5)
	assert.InDelta(t, pdftest.FirstPlacement.Y0, first.Y, 0.5)
	assert.InDelta(t, pdftest.FirstPlacement.Width(), first.Width, 0.5)
	assert.InDelta(t, pdftest.FirstPlacement.Height(), first.Height, 0.5)
	assert.InDelta(t, pdftest.SecondPlacement.X0, second.X, 0.5)
	assert.InDelta(t, pdftest.SecondPlacement.Y0, second.Y, 0.5)
	assert.InDelta(t, pdftest.SecondPlacement.Width(), second.Width, 0.5)
	assert.InDelta(t, pdftest.SecondPlacement.Height(), second.Height, 0.5)

	for _, img := range page.Images {
		assert.FileExists(t, filepath.Join(out, "images", filepath.Base(img.Src)))
	}

	var text strings.Builder
	for _, span := range page.Blocks {
		assert.Equal(t, 0.0, span.Rotation)
		text.WriteString(span.Text)
	}
	assert.Contains(t, text.String(), pdftest.SampleText)
}
