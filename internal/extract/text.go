package extract

import (
	"fmt"
	"math"

	"github.com/spherical/pdf-layout/internal/domain"
)

// ExtractSpans flattens a page's layout tree into positioned text spans,
// in block, line, span order. Non-text blocks are skipped.
func ExtractSpans(blocks []domain.Block) ([]domain.TextSpan, error) {
	spans := make([]domain.TextSpan, 0)

	for bi, block := range blocks {
		if block.Kind != domain.BlockText {
			continue
		}
		for li, line := range block.Lines {
			rotation, err := LineRotation(line.Dir)
			if err != nil {
				return nil, domain.ExtractionError(fmt.Sprintf("block %d line %d", bi, li), err)
			}
			for si, span := range line.Spans {
				ts, err := textSpan(span, rotation)
				if err != nil {
					return nil, domain.ExtractionError(fmt.Sprintf("block %d line %d span %d", bi, li, si), err)
				}
				spans = append(spans, ts)
			}
		}
	}

	return spans, nil
}

// LineRotation converts a line's direction vector (cos, sin) to degrees.
// Exactly horizontal text is 0; anything else keeps atan2's sign and quadrant.
// All spans of a line share this value, even if the backend reports mixed
// directions inside one line.
func LineRotation(dir [2]float64) (float64, error) {
	if math.IsNaN(dir[0]) || math.IsNaN(dir[1]) || math.IsInf(dir[0], 0) || math.IsInf(dir[1], 0) {
		return 0, fmt.Errorf("invalid line direction %v", dir)
	}
	if dir == domain.Horizontal {
		return 0, nil
	}
	return math.Atan2(dir[1], dir[0]) * 180 / math.Pi, nil
}

func textSpan(span domain.Span, rotation float64) (domain.TextSpan, error) {
	if !span.BBox.Valid() {
		return domain.TextSpan{}, fmt.Errorf("malformed bounding box %+v", span.BBox)
	}
	if math.IsNaN(span.Size) || math.IsNaN(span.Origin.X) || math.IsNaN(span.Origin.Y) {
		return domain.TextSpan{}, fmt.Errorf("malformed span metrics")
	}

	return domain.TextSpan{
		Type:     domain.BlockTypeText,
		Text:     span.Text,
		X:        span.BBox.X0,
		Y:        span.BBox.Y0,
		Width:    span.BBox.Width(),
		Height:   span.BBox.Height(),
		Font:     span.Font,
		FontSize: span.Size,
		Color:    span.Color,
		Rotation: rotation,
		Origin:   [2]float64{span.Origin.X, span.Origin.Y},
	}, nil
}
