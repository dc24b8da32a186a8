package domain

import "math"

// Point is a position in page space (points, origin top-left)
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in page space
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns x1 - x0
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns y1 - y0
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Valid reports whether all coordinates are finite and the rectangle is not inverted.
func (r Rect) Valid() bool {
	for _, v := range [...]float64{r.X0, r.Y0, r.X1, r.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.X1 >= r.X0 && r.Y1 >= r.Y0
}

// BlockKind distinguishes text blocks from everything else a backend reports
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockImage
)

// Block is a top-level entry of a page's text layout tree
type Block struct {
	Kind  BlockKind
	BBox  Rect
	Lines []Line
}

// Line is a run of spans sharing one writing direction.
// Dir is the unit vector (cos, sin) of the text flow; (1, 0) is horizontal LTR.
type Line struct {
	Dir   [2]float64
	BBox  Rect
	Spans []Span
}

// Horizontal is the direction vector of standard left-to-right text
var Horizontal = [2]float64{1, 0}

// Span is a maximal run of text sharing font, size and color
type Span struct {
	Text   string
	BBox   Rect
	Font   string
	Size   float64
	Color  int
	Origin Point
}

// ImageRef identifies a distinct image resource of the document,
// independent of where or how often it is drawn.
type ImageRef int

// ImageData holds the raw bytes of an image resource in its native encoding
type ImageData struct {
	Bytes []byte
	Ext   string // file extension without dot, e.g. "jpg", "png"
}
