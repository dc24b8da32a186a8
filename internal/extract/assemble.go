package extract

import "github.com/spherical/pdf-layout/internal/domain"

// AssemblePage builds the report record of one page. Width and height are
// the native page size, not the raster size.
func AssemblePage(pageNumber int, width, height float64, background string, spans []domain.TextSpan, images []domain.EmbeddedImage, skipped []domain.SkippedImage) domain.PageRecord {
	if spans == nil {
		spans = []domain.TextSpan{}
	}
	if images == nil {
		images = []domain.EmbeddedImage{}
	}
	return domain.PageRecord{
		PageNumber:      pageNumber,
		Width:           width,
		Height:          height,
		BackgroundImage: background,
		Blocks:          spans,
		Images:          images,
		SkippedImages:   skipped,
	}
}
