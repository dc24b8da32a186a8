package pdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/spherical/pdf-layout/internal/domain"
)

const (
	// MuPDF places the top of a line at origin.y - 0.8*size.
	ascentRatio = 0.8
	// image transforms are written in CSS pixels
	pxToPt = 0.75
)

// stextPage is one page of MuPDF structured text as rendered to HTML:
// a page div holding absolutely positioned <p> lines and <img> blocks.
type stextPage struct {
	Width, Height float64
	Blocks        []domain.Block
	Images        []stextImage
}

// stextImage is one drawn occurrence of an image. Placed is false when
// the element carried no usable geometry.
type stextImage struct {
	Rect   domain.Rect
	Placed bool
	Src    string
}

func parseStext(r io.Reader, m *Measurer) (*stextPage, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse structured text: %w", err)
	}

	pageDiv := findPageDiv(root)
	if pageDiv == nil {
		return nil, fmt.Errorf("structured text has no page element")
	}

	page := &stextPage{}
	style := parseStyle(attr(pageDiv, "style"))
	page.Width, _ = style.pt("width")
	page.Height, _ = style.pt("height")

	sizes := make(map[string]image.Point)
	var current *domain.Block
	flush := func() {
		if current != nil && len(current.Lines) > 0 {
			current.BBox = unionLines(current.Lines)
			page.Blocks = append(page.Blocks, *current)
		}
		current = nil
	}

	for n := pageDiv.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.DataAtom {
		case atom.Img:
			flush()
			img := parseImage(n, sizes)
			page.Images = append(page.Images, img)
			page.Blocks = append(page.Blocks, domain.Block{Kind: domain.BlockImage, BBox: img.Rect})
		case atom.P:
			if current == nil {
				current = &domain.Block{Kind: domain.BlockText}
			}
			line, err := parseLine(n, m)
			if err != nil {
				return nil, err
			}
			current.Lines = append(current.Lines, line)
		case atom.Div:
			flush()
			current = &domain.Block{Kind: domain.BlockText}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.ElementNode || c.DataAtom != atom.P {
					continue
				}
				line, err := parseLine(c, m)
				if err != nil {
					return nil, err
				}
				current.Lines = append(current.Lines, line)
			}
			flush()
		}
	}
	flush()

	return page, nil
}

func findPageDiv(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Div && strings.HasPrefix(attr(n, "id"), "page") {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findPageDiv(c); found != nil {
			return found
		}
	}
	return nil
}

// parseImage reads one drawn image. MuPDF positions the image box at its
// natural pixel size and moves it with a CSS transform applied around
// the box centre, so the natural size is needed to recover the rectangle.
func parseImage(n *html.Node, sizes map[string]image.Point) stextImage {
	img := stextImage{Src: attr(n, "src")}

	m, ok := parseMatrix(parseStyle(attr(n, "style"))["transform"])
	if !ok {
		return img
	}
	size, ok := sizes[img.Src]
	if !ok {
		size = naturalSize(img.Src)
		sizes[img.Src] = size
	}
	if size.X <= 0 || size.Y <= 0 {
		return img
	}

	img.Rect = placeImage(m, float64(size.X), float64(size.Y))
	img.Placed = img.Rect.Valid() && img.Rect.Width() > 0 && img.Rect.Height() > 0
	return img
}

// parseMatrix parses "matrix(a,b,c,d,e,f)".
func parseMatrix(v string) ([6]float64, bool) {
	var m [6]float64
	args, ok := strings.CutPrefix(strings.TrimSpace(v), "matrix(")
	if !ok {
		return m, false
	}
	args, ok = strings.CutSuffix(args, ")")
	if !ok {
		return m, false
	}
	parts := strings.Split(args, ",")
	if len(parts) != len(m) {
		return m, false
	}
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return m, false
		}
		m[i] = f
	}
	return m, true
}

// placeImage returns the page rectangle, in points, covered by a natW x natH
// box transformed by m around its centre.
func placeImage(m [6]float64, natW, natH float64) domain.Rect {
	cx, cy := natW/2, natH/2
	r := domain.Rect{X0: math.Inf(1), Y0: math.Inf(1), X1: math.Inf(-1), Y1: math.Inf(-1)}
	for _, c := range [4][2]float64{{0, 0}, {natW, 0}, {0, natH}, {natW, natH}} {
		dx, dy := c[0]-cx, c[1]-cy
		x := (cx + m[0]*dx + m[2]*dy + m[4]) * pxToPt
		y := (cy + m[1]*dx + m[3]*dy + m[5]) * pxToPt
		r = union(r, domain.Rect{X0: x, Y0: y, X1: x, Y1: y})
	}
	return r
}

// naturalSize returns the pixel size of a data URI image, or zero when
// it cannot be decoded.
func naturalSize(src string) image.Point {
	data, err := decodeDataURI(src)
	if err != nil {
		return image.Point{}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data.Bytes))
	if err != nil {
		return image.Point{}
	}
	return image.Point{X: cfg.Width, Y: cfg.Height}
}

// parseLine lays the spans of one <p> out left to right from the line's
// left edge, measuring each span's advance. MuPDF's HTML carries no line
// direction, so every line it produces is horizontal.
func parseLine(p *html.Node, m *Measurer) (domain.Line, error) {
	style := parseStyle(attr(p, "style"))
	top, _ := style.pt("top")
	left, _ := style.pt("left")
	lineHeight, _ := style.pt("line-height")

	line := domain.Line{Dir: domain.Horizontal}
	cursor := left

	var emit func(n *html.Node, face FaceStyle) error
	emit = func(n *html.Node, face FaceStyle) error {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.B:
				if err := emit(c, face|FaceBold); err != nil {
					return err
				}
			case atom.I:
				if err := emit(c, face|FaceItalic); err != nil {
					return err
				}
			case atom.Tt:
				if err := emit(c, face|FaceMono); err != nil {
					return err
				}
			case atom.Span:
				span, err := buildSpan(c, face, top, lineHeight, cursor, m)
				if err != nil {
					return err
				}
				if span.Text == "" {
					continue
				}
				cursor = span.BBox.X1
				line.Spans = append(line.Spans, span)
			default:
				if err := emit(c, face); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := emit(p, FaceRegular); err != nil {
		return domain.Line{}, err
	}

	if len(line.Spans) > 0 {
		line.BBox = unionSpans(line.Spans)
	} else {
		line.BBox = domain.Rect{X0: left, Y0: top, X1: left, Y1: top + lineHeight}
	}
	return line, nil
}

func buildSpan(n *html.Node, face FaceStyle, lineTop, lineHeight, x float64, m *Measurer) (domain.Span, error) {
	style := parseStyle(attr(n, "style"))

	size, ok := style.pt("font-size")
	if !ok {
		size = lineHeight
	}

	text := textContent(n)
	width, err := m.Advance(text, size, face)
	if err != nil {
		return domain.Span{}, fmt.Errorf("measure span %q: %w", text, err)
	}

	baseline := lineTop + ascentRatio*lineHeight
	top := lineTop
	if size != lineHeight {
		top += ascentRatio * (lineHeight - size)
	}
	return domain.Span{
		Text:   text,
		BBox:   domain.Rect{X0: x, Y0: top, X1: x + width, Y1: top + size},
		Font:   fontName(style["font-family"]),
		Size:   size,
		Color:  parseColor(style["color"]),
		Origin: domain.Point{X: x, Y: baseline},
	}, nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// cssStyle is a parsed inline style attribute.
type cssStyle map[string]string

func parseStyle(s string) cssStyle {
	style := cssStyle{}
	for _, decl := range strings.Split(s, ";") {
		key, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		style[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(val)
	}
	return style
}

// pt returns a length in points; MuPDF writes every length as "<n>pt".
func (s cssStyle) pt(key string) (float64, bool) {
	v, ok := s[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "pt"), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// fontName takes the first family of a CSS font-family list.
func fontName(family string) string {
	first, _, _ := strings.Cut(family, ",")
	return strings.Trim(strings.TrimSpace(first), `'"`)
}

// parseColor converts "#rrggbb" to a packed integer; absent means black.
func parseColor(c string) int {
	hex := strings.TrimPrefix(c, "#")
	if len(hex) != 6 {
		return 0
	}
	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}

func unionSpans(spans []domain.Span) domain.Rect {
	r := spans[0].BBox
	for _, s := range spans[1:] {
		r = union(r, s.BBox)
	}
	return r
}

func unionLines(lines []domain.Line) domain.Rect {
	r := lines[0].BBox
	for _, l := range lines[1:] {
		r = union(r, l.BBox)
	}
	return r
}

func union(a, b domain.Rect) domain.Rect {
	return domain.Rect{
		X0: min(a.X0, b.X0),
		Y0: min(a.Y0, b.Y0),
		X1: max(a.X1, b.X1),
		Y1: max(a.Y1, b.Y1),
	}
}

var mimeExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/tiff": "tif",
	"image/jp2":  "jp2",
	"image/jpx":  "jpx",
}

// decodeDataURI decodes a base64 "data:" URI into bytes and a file extension.
func decodeDataURI(uri string) (domain.ImageData, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return domain.ImageData{}, fmt.Errorf("image source is not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return domain.ImageData{}, fmt.Errorf("malformed data URI")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return domain.ImageData{}, fmt.Errorf("data URI is not base64 encoded")
	}
	ext, ok := mimeExtensions[strings.ToLower(mime)]
	if !ok {
		return domain.ImageData{}, fmt.Errorf("unsupported image type %q", mime)
	}
	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(payload), ""))
	if err != nil {
		return domain.ImageData{}, fmt.Errorf("decode image data: %w", err)
	}
	return domain.ImageData{Bytes: data, Ext: ext}, nil
}
