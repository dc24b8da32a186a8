package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf-layout/internal/domain"
)

func sampleReport() *domain.Report {
	return &domain.Report{
		Pages: []domain.PageRecord{
			{
				PageNumber:      1,
				Width:           612,
				Height:          792,
				BackgroundImage: "/uploads/page_1.png",
				Blocks: []domain.TextSpan{{
					Type: "text", Text: "R&D <draft>", X: 72, Y: 72, Width: 60, Height: 12,
					Font: "Helvetica", FontSize: 12, Color: 0x336699, Rotation: 0,
					Origin: [2]float64{72, 81.6},
				}},
				Images: []domain.EmbeddedImage{},
				SkippedImages: []domain.SkippedImage{
					{Ref: 3, Error: "unsupported image type"},
				},
			},
		},
		Total: 1,
	}
}

func TestWrite_Shape(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	r.Pages[0].SkippedImages = nil
	require.NoError(t, Write(&buf, r, "  "))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, float64(1), doc["total"])

	pages := doc["pages"].([]interface{})
	require.Len(t, pages, 1)
	page := pages[0].(map[string]interface{})
	for _, key := range []string{"pageNumber", "width", "height", "backgroundImage", "blocks", "images"} {
		assert.Contains(t, page, key)
	}
	assert.NotContains(t, page, "skippedImages")
	assert.Equal(t, []interface{}{}, page["images"], "empty lists encode as []")

	span := page["blocks"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "text", span["type"])
	assert.Equal(t, "R&D <draft>", span["text"])
	assert.Equal(t, float64(0x336699), span["color"])
	assert.Equal(t, []interface{}{72.0, 81.6}, span["origin"])

	assert.Contains(t, buf.String(), "R&D <draft>", "no HTML escaping")
	assert.Contains(t, buf.String(), "\n  \"pages\": [", "two-space indentation")
}

func TestWrite_IncludeSkipped(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	require.NoError(t, Write(&buf, r, "  "))

	assert.Contains(t, buf.String(), `"skippedImages"`)
	assert.Contains(t, buf.String(), `"ref": 3`)
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteError(&buf, "File not found: /tmp/missing.pdf"))
	assert.Equal(t, "{\"error\": \"File not found: /tmp/missing.pdf\"}\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteError(&buf, `bad "quote"`))
	assert.Equal(t, "{\"error\": \"bad \\\"quote\\\"\"}\n", buf.String())
}
