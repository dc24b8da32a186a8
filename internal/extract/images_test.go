package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf-layout/internal/domain"
)

func uploadsURL(name string) string { return "/uploads/" + name }

func TestImageExtractor_SameImageDrawnTwice(t *testing.T) {
	dir := t.TempDir()
	doc := twoPageDocument()

	results, err := NewImageExtractor(dir, uploadsURL).Extract(doc, doc.pages[0], 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, domain.ImageRef(7), res.Ref)
	require.Len(t, res.Images, 2)

	first, second := res.Images[0], res.Images[1]
	assert.Equal(t, "/uploads/page_1_img_1_1.jpg", first.Src)
	assert.Equal(t, "/uploads/page_1_img_1_2.jpg", second.Src)
	assert.NotEqual(t, first.Src, second.Src)

	assert.Equal(t, domain.EmbeddedImage{Type: "image", Src: first.Src, X: 10, Y: 10, Width: 50, Height: 30}, first)
	assert.Equal(t, 500.0, second.X)
	assert.Equal(t, 700.0, second.Y)

	for _, name := range []string{"page_1_img_1_1.jpg", "page_1_img_1_2.jpg"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
	}
}

func TestImageExtractor_UndecodableReferenceIsSkipped(t *testing.T) {
	dir := t.TempDir()
	doc := twoPageDocument()

	results, err := NewImageExtractor(dir, uploadsURL).Extract(doc, doc.pages[1], 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	require.Len(t, results[0].Images, 1)
	assert.Equal(t, "/uploads/page_2_img_1_1.jpg", results[0].Images[0].Src)

	assert.Equal(t, 2, results[1].Index)
	assert.Error(t, results[1].Err)
	assert.Empty(t, results[1].Images)
	assert.NoFileExists(t, filepath.Join(dir, "page_2_img_2_1.jpg"))
}

func TestImageExtractor_UnlocatableReferenceIsSkipped(t *testing.T) {
	dir := t.TempDir()
	doc := twoPageDocument()
	page := doc.pages[0]
	page.rectErr = map[domain.ImageRef]error{7: errNoPlacement}

	results, err := NewImageExtractor(dir, uploadsURL).Extract(doc, page, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, errNoPlacement)
}

func TestImageExtractor_MissingExtension(t *testing.T) {
	doc := twoPageDocument()
	doc.images[7] = domain.ImageData{Bytes: []byte{1}}

	results, err := NewImageExtractor(t.TempDir(), uploadsURL).Extract(doc, doc.pages[0], 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, domain.IsType(results[0].Err, domain.ErrorTypeExtraction))
}

func TestImageExtractor_WriteFailureIsPerReference(t *testing.T) {
	doc := twoPageDocument()
	missingDir := filepath.Join(t.TempDir(), "does-not-exist")

	results, err := NewImageExtractor(missingDir, uploadsURL).Extract(doc, doc.pages[0], 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, domain.IsType(results[0].Err, domain.ErrorTypeIO))
	assert.Empty(t, results[0].Images)
}

func TestImageExtractor_NoImages(t *testing.T) {
	page := &fakePage{number: 1, width: 100, height: 100}

	results, err := NewImageExtractor(t.TempDir(), uploadsURL).Extract(&fakeDocument{}, page, 1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "page_3.png", BackgroundFilename(3))
	assert.Equal(t, "page_2_img_4_1.png", ImageFilename(2, 4, 1, "png"))
}

func TestAssemblePage_EmptySlicesSerializeAsArrays(t *testing.T) {
	page := AssemblePage(1, 612, 792, "/uploads/page_1.png", nil, nil, nil)

	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, 612.0, page.Width)
	assert.Equal(t, 792.0, page.Height)
	assert.Equal(t, "/uploads/page_1.png", page.BackgroundImage)
	assert.NotNil(t, page.Blocks)
	assert.NotNil(t, page.Images)
	assert.Nil(t, page.SkippedImages)
}
