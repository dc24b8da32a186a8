package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spherical/pdf-layout/internal/domain"
)

// ImageResult is the outcome for one distinct image reference of a page.
// Err is set when the reference could not be located, decoded or written;
// Images is then empty.
type ImageResult struct {
	Index  int // 1-based position among the page's references
	Ref    domain.ImageRef
	Images []domain.EmbeddedImage
	Err    error
}

// ImageExtractor writes every placement of a page's embedded images to disk
type ImageExtractor struct {
	imagesDir string
	urlFor    func(filename string) string
}

// NewImageExtractor creates an extractor writing into imagesDir
func NewImageExtractor(imagesDir string, urlFor func(string) string) *ImageExtractor {
	return &ImageExtractor{imagesDir: imagesDir, urlFor: urlFor}
}

// Extract returns one result per distinct image reference, in the order
// the page lists them. Only failing to enumerate the references is an error.
func (x *ImageExtractor) Extract(doc domain.Document, page domain.Page, pageNumber int) ([]ImageResult, error) {
	refs, err := page.ImageRefs()
	if err != nil {
		return nil, domain.ExtractionError(fmt.Sprintf("Failed to list images of page %d", pageNumber), err)
	}

	results := make([]ImageResult, 0, len(refs))
	for i, ref := range refs {
		res := ImageResult{Index: i + 1, Ref: ref}
		res.Images, res.Err = x.extractRef(doc, page, pageNumber, i+1, ref)
		results = append(results, res)
	}
	return results, nil
}

func (x *ImageExtractor) extractRef(doc domain.Document, page domain.Page, pageNumber, index int, ref domain.ImageRef) ([]domain.EmbeddedImage, error) {
	rects, err := page.ImageRects(ref)
	if err != nil {
		return nil, err
	}
	if len(rects) == 0 {
		return nil, nil
	}

	data, err := doc.ExtractImage(ref)
	if err != nil {
		return nil, err
	}
	if data.Ext == "" {
		return nil, domain.ExtractionError(fmt.Sprintf("image %d has no file extension", ref), nil)
	}

	images := make([]domain.EmbeddedImage, 0, len(rects))
	for r, rect := range rects {
		name := ImageFilename(pageNumber, index, r+1, data.Ext)
		if err := os.WriteFile(filepath.Join(x.imagesDir, name), data.Bytes, 0o644); err != nil {
			return nil, domain.IOError(fmt.Sprintf("Failed to write %s", name), err)
		}

		images = append(images, domain.EmbeddedImage{
			Type:     domain.BlockTypeImage,
			Src:      x.urlFor(name),
			X:        rect.X0,
			Y:        rect.Y0,
			Width:    rect.Width(),
			Height:   rect.Height(),
			Rotation: 0, // placement transforms are already folded into rect
		})
	}
	return images, nil
}
