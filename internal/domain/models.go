package domain

import "time"

// Report is the root JSON document written to stdout after a successful run
type Report struct {
	Pages []PageRecord `json:"pages"`
	Total int          `json:"total"`
}

// PageRecord is the assembled record for a single PDF page
type PageRecord struct {
	PageNumber      int             `json:"pageNumber"`
	Width           float64         `json:"width"`
	Height          float64         `json:"height"`
	BackgroundImage string          `json:"backgroundImage"`
	Blocks          []TextSpan      `json:"blocks"`
	Images          []EmbeddedImage `json:"images"`
	SkippedImages   []SkippedImage  `json:"skippedImages,omitempty"`
}

// TextSpan is a positioned, styled run of text
type TextSpan struct {
	Type     string     `json:"type"` // always "text"
	Text     string     `json:"text"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Font     string     `json:"font"`
	FontSize float64    `json:"fontSize"`
	Color    int        `json:"color"`    // packed 0xRRGGBB
	Rotation float64    `json:"rotation"` // degrees
	Origin   [2]float64 `json:"origin"`   // baseline start
}

// EmbeddedImage is one on-page placement of an embedded image resource
type EmbeddedImage struct {
	Type     string  `json:"type"` // always "image"
	Src      string  `json:"src"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// SkippedImage records an image reference that could not be extracted
type SkippedImage struct {
	Ref   int    `json:"ref"`
	Error string `json:"error"`
}

const (
	BlockTypeText  = "text"
	BlockTypeImage = "image"
)

// EventType represents the type of progress event
type EventType string

const (
	EventStart        EventType = "start"
	EventPageComplete EventType = "page_complete"
	EventImageSkipped EventType = "image_skipped"
	EventComplete     EventType = "complete"
)

// Event is reported synchronously by the pipeline as it advances
type Event struct {
	Type       EventType
	PageNumber int
	TotalPages int
	Payload    interface{}
	Timestamp  time.Time
}

// ProcessingStats contains metadata about the extraction run
type ProcessingStats struct {
	TotalTime      time.Duration
	PagesProcessed int
	TextSpans      int
	Images         int
	SkippedImages  int
}
