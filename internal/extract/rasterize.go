package extract

import (
	"fmt"
	"image/png"
	"os"

	"github.com/spherical/pdf-layout/internal/domain"
)

// Rasterize renders page at scale and writes it as PNG to path.
func Rasterize(page domain.Page, pageNumber int, scale float64, path string) error {
	img, err := page.Rasterize(scale)
	if err != nil {
		return err
	}

	outputFile, err := os.Create(path)
	if err != nil {
		return domain.IOError(fmt.Sprintf("Failed to create output file for page %d", pageNumber), err)
	}

	err = png.Encode(outputFile, img)
	closeErr := outputFile.Close()
	if err != nil {
		return domain.ConversionError(fmt.Sprintf("Failed to encode page %d as PNG", pageNumber), err)
	}
	if closeErr != nil {
		return domain.IOError(fmt.Sprintf("Failed to write page %d image", pageNumber), closeErr)
	}
	return nil
}
