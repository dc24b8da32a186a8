package pdf

import (
	"crypto/sha256"
	"fmt"
	"image"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/spherical/pdf-layout/internal/domain"
)

// Backend opens PDF documents with MuPDF through go-fitz
type Backend struct {
	measurer *Measurer
}

// NewBackend creates a new MuPDF backend instance
func NewBackend() (*Backend, error) {
	m, err := NewMeasurer()
	if err != nil {
		return nil, domain.ConfigError("Failed to load metric fonts", err)
	}
	return &Backend{measurer: m}, nil
}

// Open opens the PDF at path
func (b *Backend) Open(path string) (domain.Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, domain.ConversionError("Failed to open PDF", err)
	}

	return newDocument(doc, b.measurer), nil
}

func newDocument(doc *fitz.Document, m *Measurer) *Document {
	return &Document{
		doc:      doc,
		measurer: m,
		refIDs:   make(map[[sha256.Size]byte]domain.ImageRef),
		sources:  make(map[domain.ImageRef]string),
	}
}

// Document is an open MuPDF document. MuPDF's structured text carries
// no object numbers, so identical image payloads are treated as one
// image reference and numbered in order of first appearance.
type Document struct {
	doc      *fitz.Document
	measurer *Measurer
	refIDs   map[[sha256.Size]byte]domain.ImageRef
	sources  map[domain.ImageRef]string
}

// NumPages returns the page count
func (d *Document) NumPages() int {
	return d.doc.NumPage()
}

// Page loads the structured text of the page at index
func (d *Document) Page(index int) (domain.Page, error) {
	if index < 0 || index >= d.doc.NumPage() {
		return nil, domain.ValidationError(fmt.Sprintf("page index %d out of range", index), nil)
	}

	markup, err := d.doc.HTML(index, false)
	if err != nil {
		return nil, domain.ExtractionError(fmt.Sprintf("Failed to extract structured text of page %d", index+1), err)
	}

	st, err := parseStext(strings.NewReader(markup), d.measurer)
	if err != nil {
		return nil, domain.ExtractionError(fmt.Sprintf("Failed to parse structured text of page %d", index+1), err)
	}

	if st.Width <= 0 || st.Height <= 0 {
		bounds, err := d.doc.Bound(index)
		if err != nil {
			return nil, domain.ExtractionError(fmt.Sprintf("Failed to bound page %d", index+1), err)
		}
		st.Width = float64(bounds.Dx())
		st.Height = float64(bounds.Dy())
	}

	return d.newPage(index, st), nil
}

func (d *Document) newPage(index int, st *stextPage) *Page {
	p := &Page{
		doc:   d,
		index: index,
		st:    st,
		rects: make(map[domain.ImageRef][]domain.Rect),
	}
	for _, img := range st.Images {
		ref := d.register(img.Src)
		if _, seen := p.rects[ref]; !seen {
			p.refs = append(p.refs, ref)
			p.rects[ref] = nil
		}
		if img.Placed {
			p.rects[ref] = append(p.rects[ref], img.Rect)
		}
	}
	return p
}

func (d *Document) register(src string) domain.ImageRef {
	sum := sha256.Sum256([]byte(src))
	if ref, ok := d.refIDs[sum]; ok {
		return ref
	}
	ref := domain.ImageRef(len(d.refIDs) + 1)
	d.refIDs[sum] = ref
	d.sources[ref] = src
	return ref
}

// ExtractImage decodes the embedded bytes of ref
func (d *Document) ExtractImage(ref domain.ImageRef) (domain.ImageData, error) {
	src, ok := d.sources[ref]
	if !ok {
		return domain.ImageData{}, domain.ExtractionError(fmt.Sprintf("unknown image reference %d", ref), nil)
	}
	data, err := decodeDataURI(src)
	if err != nil {
		return domain.ImageData{}, domain.ExtractionError(fmt.Sprintf("Failed to decode image %d", ref), err)
	}
	return data, nil
}

// Close releases the MuPDF document
func (d *Document) Close() error {
	if d.doc == nil {
		return nil
	}
	err := d.doc.Close()
	d.doc = nil
	return err
}

// Page is a loaded page of a MuPDF document
type Page struct {
	doc   *Document
	index int
	st    *stextPage
	refs  []domain.ImageRef
	rects map[domain.ImageRef][]domain.Rect
}

// Number returns the 1-based page number
func (p *Page) Number() int {
	return p.index + 1
}

// Size returns the native page size in points
func (p *Page) Size() (float64, float64) {
	return p.st.Width, p.st.Height
}

// Rasterize renders the page at scale x 72 DPI
func (p *Page) Rasterize(scale float64) (image.Image, error) {
	img, err := p.doc.doc.ImageDPI(p.index, 72*scale)
	if err != nil {
		return nil, domain.ConversionError(fmt.Sprintf("Failed to render page %d", p.index+1), err)
	}
	return img, nil
}

// Layout returns the parsed text layout tree
func (p *Page) Layout() ([]domain.Block, error) {
	return p.st.Blocks, nil
}

// ImageRefs lists distinct image references in drawing order
func (p *Page) ImageRefs() ([]domain.ImageRef, error) {
	return p.refs, nil
}

// ImageRects returns every placement of ref on this page
func (p *Page) ImageRects(ref domain.ImageRef) ([]domain.Rect, error) {
	rects, ok := p.rects[ref]
	if !ok {
		return nil, domain.ExtractionError(fmt.Sprintf("image %d is not drawn on page %d", ref, p.index+1), nil)
	}
	if len(rects) == 0 {
		return nil, domain.ExtractionError(fmt.Sprintf("no placement found for image %d on page %d", ref, p.index+1), nil)
	}
	return rects, nil
}
