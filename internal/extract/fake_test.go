package extract

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/spherical/pdf-layout/internal/domain"
)

// fakePage is an in-memory page used to drive the pipeline without MuPDF.
type fakePage struct {
	number    int
	width     float64
	height    float64
	blocks    []domain.Block
	refs      []domain.ImageRef
	rects     map[domain.ImageRef][]domain.Rect
	rectErr   map[domain.ImageRef]error
	rasterErr error
	layoutErr error
}

func (p *fakePage) Number() int                     { return p.number }
func (p *fakePage) Size() (float64, float64)        { return p.width, p.height }
func (p *fakePage) Layout() ([]domain.Block, error) { return p.blocks, p.layoutErr }
func (p *fakePage) ImageRefs() ([]domain.ImageRef, error) {
	return p.refs, nil
}

func (p *fakePage) Rasterize(scale float64) (image.Image, error) {
	if p.rasterErr != nil {
		return nil, p.rasterErr
	}
	img := image.NewRGBA(image.Rect(0, 0, int(p.width*scale), int(p.height*scale)))
	img.Set(0, 0, color.White)
	return img, nil
}

func (p *fakePage) ImageRects(ref domain.ImageRef) ([]domain.Rect, error) {
	if err, ok := p.rectErr[ref]; ok {
		return nil, err
	}
	return p.rects[ref], nil
}

type fakeDocument struct {
	pages   []*fakePage
	images  map[domain.ImageRef]domain.ImageData
	closed  bool
	pageErr error
}

func (d *fakeDocument) NumPages() int { return len(d.pages) }

func (d *fakeDocument) Page(index int) (domain.Page, error) {
	if d.pageErr != nil {
		return nil, d.pageErr
	}
	return d.pages[index], nil
}

func (d *fakeDocument) ExtractImage(ref domain.ImageRef) (domain.ImageData, error) {
	data, ok := d.images[ref]
	if !ok {
		return domain.ImageData{}, fmt.Errorf("xref %d: cannot decode", ref)
	}
	return data, nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

type fakeOpener struct {
	doc    *fakeDocument
	opened int
	err    error
}

func (o *fakeOpener) Open(string) (domain.Document, error) {
	o.opened++
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

func horizontalLine(y float64, texts ...string) domain.Line {
	line := domain.Line{Dir: domain.Horizontal}
	x := 72.0
	for _, text := range texts {
		w := float64(len(text)) * 6
		line.Spans = append(line.Spans, domain.Span{
			Text:   text,
			BBox:   domain.Rect{X0: x, Y0: y, X1: x + w, Y1: y + 12},
			Font:   "Helvetica",
			Size:   12,
			Origin: domain.Point{X: x, Y: y + 9.6},
		})
		x += w
	}
	return line
}

// twoPageDocument has text on both pages, a logo drawn twice on page 1
// and a broken image on page 2.
func twoPageDocument() *fakeDocument {
	return &fakeDocument{
		pages: []*fakePage{
			{
				number: 1, width: 612, height: 792,
				blocks: []domain.Block{
					{Kind: domain.BlockText, Lines: []domain.Line{horizontalLine(72, "Quarterly ", "Report")}},
					{Kind: domain.BlockImage},
				},
				refs: []domain.ImageRef{7},
				rects: map[domain.ImageRef][]domain.Rect{
					7: {{X0: 10, Y0: 10, X1: 60, Y1: 40}, {X0: 500, Y0: 700, X1: 550, Y1: 730}},
				},
			},
			{
				number: 2, width: 612, height: 792,
				blocks: []domain.Block{
					{Kind: domain.BlockText, Lines: []domain.Line{horizontalLine(100, "Page two")}},
				},
				refs: []domain.ImageRef{7, 9},
				rects: map[domain.ImageRef][]domain.Rect{
					7: {{X0: 20, Y0: 20, X1: 70, Y1: 50}},
					9: {{X0: 0, Y0: 0, X1: 10, Y1: 10}},
				},
			},
		},
		images: map[domain.ImageRef]domain.ImageData{
			7: {Bytes: []byte{0xff, 0xd8, 0xff}, Ext: "jpg"},
		},
	}
}

var errNoPlacement = errors.New("no placement")
