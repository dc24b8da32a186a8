// Package pdftest writes small PDF documents for tests that need a real
// MuPDF round trip.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spherical/pdf-layout/internal/domain"
)

// SampleText is the single line of Helvetica text on the sample page.
const SampleText = "Hello layout"

// Placements of the sample image on the 612x792pt page, top-left origin.
var (
	FirstPlacement  = domain.Rect{X0: 50, Y0: 242, X1: 150, Y1: 292}
	SecondPlacement = domain.Rect{X0: 300, Y0: 552, X1: 380, Y1: 592}
)

// WriteSample writes the sample PDF into dir and returns its path. The
// page carries SampleText and one 2x2 RGB image drawn twice.
func WriteSample(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "sample.pdf")
	if err := os.WriteFile(path, Sample(), 0o644); err != nil {
		t.Fatalf("write sample pdf: %v", err)
	}
	return path
}

// Sample returns the bytes of the sample PDF.
func Sample() []byte {
	pixels := []byte{
		255, 0, 0, 0, 0, 255,
		0, 255, 0, 255, 255, 255,
	}
	content := fmt.Sprintf("BT /F1 12 Tf 72 708 Td (%s) Tj ET\n"+
		"q 100 0 0 50 50 500 cm /Im1 Do Q\n"+
		"q 80 0 0 40 300 200 cm /Im1 Do Q\n", SampleText)

	objects := [][]byte{
		[]byte("<< /Type /Catalog /Pages 2 0 R >>"),
		[]byte("<< /Type /Pages /Kids [3 0 R] /Count 1 >>"),
		[]byte("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 4 0 R >> /XObject << /Im1 5 0 R >> >> /Contents 6 0 R >>"),
		[]byte("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"),
		stream("/Type /XObject /Subtype /Image /Width 2 /Height 2 /ColorSpace /DeviceRGB /BitsPerComponent 8", pixels),
		stream("", []byte(content)),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		buf.Write(obj)
		buf.WriteString("\nendobj\n")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func stream(dict string, data []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<< %s /Length %d >>\nstream\n", dict, len(data))
	buf.Write(data)
	buf.WriteString("\nendstream")
	return buf.Bytes()
}
