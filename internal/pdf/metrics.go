package pdf

import (
	"fmt"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FaceStyle selects the metric font used to measure a span.
type FaceStyle int

const (
	FaceRegular FaceStyle = 0
	FaceBold    FaceStyle = 1 << iota
	FaceItalic
	FaceMono
)

type faceKey struct {
	style FaceStyle
	size  float64
}

// Measurer estimates the advance width of text runs. MuPDF's HTML output
// carries line positions but not span widths, so spans are measured with
// the Go font family at the reported size.
type Measurer struct {
	fonts map[FaceStyle]*opentype.Font
	faces map[faceKey]font.Face
}

// NewMeasurer parses the embedded metric fonts.
func NewMeasurer() (*Measurer, error) {
	sources := map[FaceStyle][]byte{
		FaceRegular:           goregular.TTF,
		FaceBold:              gobold.TTF,
		FaceItalic:            goitalic.TTF,
		FaceBold | FaceItalic: gobolditalic.TTF,
		FaceMono:              gomono.TTF,
		FaceMono | FaceBold:   gomonobold.TTF,
	}

	m := &Measurer{
		fonts: make(map[FaceStyle]*opentype.Font, len(sources)),
		faces: make(map[faceKey]font.Face),
	}
	for style, ttf := range sources {
		f, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parse metric font %d: %w", style, err)
		}
		m.fonts[style] = f
	}
	return m, nil
}

// Advance returns the width in points of text set at size.
func (m *Measurer) Advance(text string, size float64, style FaceStyle) (float64, error) {
	if text == "" {
		return 0, nil
	}
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return 0, fmt.Errorf("invalid font size %g", size)
	}

	face, err := m.face(style, size)
	if err != nil {
		return 0, err
	}
	adv := font.MeasureString(face, text)
	return float64(adv) / 64, nil
}

func (m *Measurer) face(style FaceStyle, size float64) (font.Face, error) {
	key := faceKey{style: style, size: max(math.Round(size*10)/10, 0.1)}
	if f, ok := m.faces[key]; ok {
		return f, nil
	}

	src, ok := m.fonts[style]
	if !ok {
		// mono italic variants fall back to plain mono
		src = m.fonts[style&FaceMono]
	}

	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    key.size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	m.faces[key] = f
	return f, nil
}
