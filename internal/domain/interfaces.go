package domain

import "image"

// Opener opens a PDF document through a concrete backend
type Opener interface {
	Open(path string) (Document, error)
}

// Document is an opened PDF. Close must be called when processing completes.
type Document interface {
	// NumPages returns the page count
	NumPages() int

	// Page loads the page at the zero-based index
	Page(index int) (Page, error)

	// ExtractImage decodes the raw bytes of an image resource
	ExtractImage(ref ImageRef) (ImageData, error)

	Close() error
}

// Page exposes what the pipeline needs from a single page
type Page interface {
	// Number returns the 1-based page number
	Number() int

	// Size returns the native page width and height in points
	Size() (width, height float64)

	// Rasterize renders the page at scale times the native 72 DPI
	Rasterize(scale float64) (image.Image, error)

	// Layout returns the text layout tree: blocks -> lines -> spans
	Layout() ([]Block, error)

	// ImageRefs lists the distinct image resources referenced by the page
	ImageRefs() ([]ImageRef, error)

	// ImageRects resolves every on-page rectangle where ref is drawn
	ImageRects(ref ImageRef) ([]Rect, error)
}
