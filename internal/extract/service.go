package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spherical/pdf-layout/internal/config"
	"github.com/spherical/pdf-layout/internal/domain"
	"github.com/spherical/pdf-layout/internal/observability"
	"github.com/spherical/pdf-layout/internal/pdf"
)

// Service orchestrates the per-page extraction pipeline
type Service struct {
	opener    domain.Opener
	validator *pdf.Validator
	cfg       *config.Config
	logger    *observability.Logger
	onEvent   func(domain.Event)
}

// NewService creates a new extraction service
func NewService(opener domain.Opener, cfg *config.Config, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Service{
		opener:    opener,
		validator: pdf.NewValidator(),
		cfg:       cfg,
		logger:    logger.WithComponent("extract"),
	}
}

// OnEvent registers a callback invoked synchronously as the run advances
func (s *Service) OnEvent(fn func(domain.Event)) {
	s.onEvent = fn
}

// Process converts the PDF at pdfPath, writing image assets under outputDir,
// and returns the report. Pages are handled strictly in document order; the
// first fatal error aborts the run.
func (s *Service) Process(ctx context.Context, pdfPath, outputDir string) (*domain.Report, error) {
	startTime := time.Now()

	if err := s.validator.ValidatePDFPath(pdfPath); err != nil {
		return nil, err
	}

	imagesDir := filepath.Join(outputDir, s.cfg.Output.ImagesDir)
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return nil, domain.IOError(fmt.Sprintf("Failed to create %s", imagesDir), err)
	}

	doc, err := s.opener.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := doc.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to close document")
		}
	}()

	total := doc.NumPages()
	s.logger.Info().Str("pdf", pdfPath).Int("pages", total).Msg("Starting extraction")
	s.emit(domain.Event{Type: domain.EventStart, TotalPages: total, Payload: pdfPath})

	images := NewImageExtractor(imagesDir, s.cfg.ImageURL)
	report := &domain.Report{Pages: make([]domain.PageRecord, 0, total)}
	var stats domain.ProcessingStats

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := s.processPage(doc, i, imagesDir, images, &stats)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		report.Pages = append(report.Pages, page)
		stats.PagesProcessed++

		s.emit(domain.Event{Type: domain.EventPageComplete, PageNumber: i + 1, TotalPages: total})
	}

	report.Total = len(report.Pages)
	stats.TotalTime = time.Since(startTime)

	s.logger.Info().
		Int("pages", stats.PagesProcessed).
		Int("spans", stats.TextSpans).
		Int("images", stats.Images).
		Int("skipped_images", stats.SkippedImages).
		Dur("duration", stats.TotalTime).
		Msg("Extraction complete")
	s.emit(domain.Event{Type: domain.EventComplete, TotalPages: total, Payload: stats})

	return report, nil
}

// processPage runs rasterization, text extraction and image extraction for
// one page, in that order.
func (s *Service) processPage(doc domain.Document, index int, imagesDir string, images *ImageExtractor, stats *domain.ProcessingStats) (domain.PageRecord, error) {
	pageNumber := index + 1
	logger := s.logger.WithPage(pageNumber)

	page, err := doc.Page(index)
	if err != nil {
		return domain.PageRecord{}, err
	}

	bgName := BackgroundFilename(pageNumber)
	if err := Rasterize(page, pageNumber, s.cfg.Render.Scale, filepath.Join(imagesDir, bgName)); err != nil {
		return domain.PageRecord{}, err
	}
	logger.Debug().Str("file", bgName).Msg("Rendered background")

	blocks, err := page.Layout()
	if err != nil {
		return domain.PageRecord{}, domain.ExtractionError("Failed to read text layout", err)
	}
	spans, err := ExtractSpans(blocks)
	if err != nil {
		return domain.PageRecord{}, err
	}

	results, err := images.Extract(doc, page, pageNumber)
	if err != nil {
		return domain.PageRecord{}, err
	}

	var embedded []domain.EmbeddedImage
	var skipped []domain.SkippedImage
	for _, res := range results {
		if res.Err != nil {
			logger.Warn().Int("ref", int(res.Ref)).Int("index", res.Index).Err(res.Err).Msg("Skipping image")
			stats.SkippedImages++
			entry := domain.SkippedImage{Ref: int(res.Ref), Error: domain.Message(res.Err)}
			s.emit(domain.Event{Type: domain.EventImageSkipped, PageNumber: pageNumber, Payload: entry})
			if s.cfg.Output.IncludeSkipped {
				skipped = append(skipped, entry)
			}
			continue
		}
		embedded = append(embedded, res.Images...)
	}

	stats.TextSpans += len(spans)
	stats.Images += len(embedded)
	logger.Debug().Int("spans", len(spans)).Int("images", len(embedded)).Msg("Page extracted")

	width, height := page.Size()
	return AssemblePage(pageNumber, width, height, s.cfg.ImageURL(bgName), spans, embedded, skipped), nil
}

// emit forwards an event to the registered callback
func (s *Service) emit(event domain.Event) {
	if s.onEvent == nil {
		return
	}
	event.Timestamp = time.Now()
	s.onEvent(event)
}
