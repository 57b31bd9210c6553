package pdf

import (
	"encoding/base64"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Span style flag bits, matching MuPDF's span flag semantics.
const (
	flagItalic = 1 << 1
	flagBold   = 1 << 4
)

// MuPDF reports these metrics relative to font size; the HTML export drops
// them, so the mapper falls back to MuPDF's own defaults.
const (
	defaultAscender  = 0.8
	defaultDescender = -0.2
)

// parseStextHTML maps MuPDF's structured HTML export of one page into raw
// blocks. Each <p> is a positioned text run, each <img> an embedded image.
func parseStextHTML(markup string) ([]RawBlock, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	var blocks []RawBlock
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p":
				if b, ok := textBlockFromNode(n, len(blocks)); ok {
					blocks = append(blocks, b)
				}
				return
			case "img":
				blocks = append(blocks, imageBlockFromNode(n, len(blocks)))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return blocks, nil
}

func textBlockFromNode(p *html.Node, number int) (RawBlock, bool) {
	style := attr(p, "style")
	left := stylePt(style, "left")
	top := stylePt(style, "top")
	origin := [2]float64{left, top}

	var spans []RawSpan
	collectSpans(p, RawSpan{
		Color:     "#000000",
		Ascender:  defaultAscender,
		Descender: defaultDescender,
		Origin:    origin,
		BBox:      [4]float64{left, top, left, top},
	}, &spans)

	if len(spans) == 0 {
		return RawBlock{}, false
	}

	return RawBlock{
		Number: number,
		Type:   RawBlockText,
		BBox:   [4]float64{left, top, left, top},
		Lines: []RawLine{{
			Spans: spans,
			WMode: 0,
			Dir:   [2]float64{1, 0},
			BBox:  [4]float64{left, top, left, top},
		}},
	}, true
}

// collectSpans walks a paragraph, tracking inherited style. MuPDF emits
// <span style="font-family:...;font-size:...;color:..."> runs, with <b> and
// <i> wrappers for weight and slant.
func collectSpans(n *html.Node, inherited RawSpan, out *[]RawSpan) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if c.Data == "" {
				continue
			}
			span := inherited
			span.Text = c.Data
			*out = append(*out, span)
		case html.ElementNode:
			next := inherited
			switch c.Data {
			case "b":
				next.Flags |= flagBold
			case "i":
				next.Flags |= flagItalic
			case "span":
				style := attr(c, "style")
				if fam := styleValue(style, "font-family"); fam != "" {
					next.Font = strings.TrimSpace(strings.Split(fam, ",")[0])
				}
				if size := stylePt(style, "font-size"); size > 0 {
					next.Size = size
				}
				if color := styleValue(style, "color"); color != "" {
					next.Color = color
				}
				if styleValue(style, "font-weight") == "bold" {
					next.Flags |= flagBold
				}
				if styleValue(style, "font-style") == "italic" {
					next.Flags |= flagItalic
				}
			}
			collectSpans(c, next, out)
		}
	}
}

func imageBlockFromNode(img *html.Node, number int) RawBlock {
	style := attr(img, "style")
	left := stylePt(style, "left")
	top := stylePt(style, "top")
	width := stylePt(style, "width")
	height := stylePt(style, "height")
	if width == 0 {
		width, _ = strconv.ParseFloat(attr(img, "width"), 64)
	}
	if height == 0 {
		height, _ = strconv.ParseFloat(attr(img, "height"), 64)
	}

	ext, size := imageSource(attr(img, "src"))

	return RawBlock{
		Number: number,
		Type:   RawBlockImage,
		BBox:   [4]float64{left, top, left + width, top + height},
		Image: &RawImage{
			Width:      int(width),
			Height:     int(height),
			Ext:        ext,
			Colorspace: 3,
			XRes:       96,
			YRes:       96,
			BPC:        8,
			Transform:  [6]float64{width, 0, 0, height, left, top},
			Size:       size,
		},
	}
}

// imageSource decodes a data URI's media type and payload size.
func imageSource(src string) (string, int64) {
	if !strings.HasPrefix(src, "data:image/") {
		return "", 0
	}
	rest := strings.TrimPrefix(src, "data:image/")
	semi := strings.IndexAny(rest, ";,")
	if semi < 0 {
		return "", 0
	}
	ext := rest[:semi]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return ext, 0
	}
	payload := rest[comma+1:]
	return ext, int64(base64.StdEncoding.DecodedLen(len(payload)))
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// styleValue extracts a property from an inline CSS declaration list.
func styleValue(style, prop string) string {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(name) == prop {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// stylePt extracts a length property expressed in points.
func stylePt(style, prop string) float64 {
	v := styleValue(style, prop)
	v = strings.TrimSuffix(v, "pt")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return f
}
