package extract

import "fmt"

// BackgroundFilename is the raster file name of the 1-based page.
func BackgroundFilename(page int) string {
	return fmt.Sprintf("page_%d.png", page)
}

// ImageFilename names one occurrence of an embedded image: page number,
// reference index and occurrence index are all 1-based.
func ImageFilename(page, ref, occurrence int, ext string) string {
	return fmt.Sprintf("page_%d_img_%d_%d.%s", page, ref, occurrence, ext)
}
