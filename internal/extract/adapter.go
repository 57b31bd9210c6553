package extract

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/knowron/foss-api/internal/pdf"
)

// buildPages converts the engine's raw structural output into the typed page
// model, applying all normalization rules: color hex conversion, UTF-8 text
// repair, bbox ordering, image-byte dropping, and line-drawing dedup.
func buildPages(raw *pdf.RawDocument) []Page {
	pages := make([]Page, 0, len(raw.Pages))
	for i, rp := range raw.Pages {
		page := Page{
			Number:       i + 1,
			Width:        rp.Width,
			Height:       rp.Height,
			Rotation:     rp.Rotation,
			Blocks:       buildBlocks(rp.Blocks),
			LineDrawings: dedupLineDrawings(rp.Drawings),
		}
		pages = append(pages, page)
	}
	return pages
}

func buildBlocks(raw []pdf.RawBlock) []Block {
	blocks := make([]Block, 0, len(raw))
	for _, rb := range raw {
		switch rb.Type {
		case pdf.RawBlockText:
			blocks = append(blocks, TextBlock{
				Number: rb.Number,
				Type:   BlockTypeText,
				BBox:   normalizeBBox(rb.BBox),
				Lines:  buildLines(rb.Lines),
			})
		case pdf.RawBlockImage:
			img := rb.Image
			if img == nil {
				img = &pdf.RawImage{}
			}
			blocks = append(blocks, ImageBlock{
				Number:     rb.Number,
				Type:       BlockTypeImage,
				BBox:       normalizeBBox(rb.BBox),
				Width:      img.Width,
				Height:     img.Height,
				Ext:        img.Ext,
				Colorspace: img.Colorspace,
				XRes:       img.XRes,
				YRes:       img.YRes,
				BPC:        img.BPC,
				Transform:  img.Transform,
				Size:       img.Size,
				Image:      "", // bytes dropped to bound response size
			})
		}
	}
	return blocks
}

func buildLines(raw []pdf.RawLine) []Line {
	lines := make([]Line, 0, len(raw))
	for _, rl := range raw {
		spans := make([]Span, 0, len(rl.Spans))
		for _, rs := range rl.Spans {
			spans = append(spans, Span{
				Size:      rs.Size,
				Flags:     rs.Flags,
				Font:      rs.Font,
				Color:     normalizeColor(rs.Color),
				Ascender:  rs.Ascender,
				Descender: rs.Descender,
				Text:      sanitizeText(rs.Text),
				Origin:    rs.Origin,
				BBox:      normalizeBBox(rs.BBox),
			})
		}
		lines = append(lines, Line{
			Spans: spans,
			WMode: rl.WMode,
			Dir:   rl.Dir,
			BBox:  normalizeBBox(rl.BBox),
		})
	}
	return lines
}

// normalizeColor converts a packed sRGB integer to "#rrggbb". Values already
// in hex-string form pass through unchanged, so the conversion is idempotent.
func normalizeColor(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case int:
		return hexFromSRGB(uint32(c))
	case int32:
		return hexFromSRGB(uint32(c))
	case int64:
		return hexFromSRGB(uint32(c))
	case uint32:
		return hexFromSRGB(c)
	case float64:
		return hexFromSRGB(uint32(c))
	default:
		return "#000000"
	}
}

func hexFromSRGB(c uint32) string {
	r := (c >> 16) & 0xff
	g := (c >> 8) & 0xff
	b := c & 0xff
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// sanitizeText enforces the UTF-8 contract: text that cannot be decoded is
// replaced with an empty string rather than failing the extraction.
func sanitizeText(s string) string {
	if !utf8.ValidString(s) {
		return ""
	}
	return s
}

// normalizeBBox orders the corners so that x0<=x1 and y0<=y1.
func normalizeBBox(b [4]float64) [4]float64 {
	if b[0] > b[2] {
		b[0], b[2] = b[2], b[0]
	}
	if b[1] > b[3] {
		b[1], b[3] = b[3], b[1]
	}
	return b
}

// dedupLineDrawings keeps only straight-line items, rounds endpoints to 2
// decimals, and removes duplicate segments while preserving first-seen order.
func dedupLineDrawings(items []pdf.RawDrawing) [][4]float64 {
	var out [][4]float64
	seen := make(map[[4]float64]struct{}, len(items))
	for _, item := range items {
		if item.Kind != pdf.DrawLine {
			continue
		}
		segment := [4]float64{
			round2(item.P0[0]),
			round2(item.P0[1]),
			round2(item.P1[0]),
			round2(item.P1[1]),
		}
		if _, ok := seen[segment]; ok {
			continue
		}
		seen[segment] = struct{}{}
		out = append(out, segment)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// toTOC converts the engine's outline entries, cleaning titles the same way
// span text is cleaned.
func toTOC(entries []pdf.TOCEntry) []TOCEntry {
	if len(entries) == 0 {
		return nil
	}
	toc := make([]TOCEntry, 0, len(entries))
	for _, e := range entries {
		toc = append(toc, TOCEntry{
			Level: e.Level,
			Title: strings.ToValidUTF8(e.Title, ""),
			Page:  e.Page,
		})
	}
	return toc
}

// contentCounts tallies the classification inputs across all pages.
type contentCounts struct {
	textBlocks int
	images     int
	drawings   int
}

// countContent counts text blocks, images (page-level references plus image
// blocks), and deduplicated line drawings.
func countContent(pages []Page, raw *pdf.RawDocument) contentCounts {
	var counts contentCounts
	for _, p := range pages {
		for _, b := range p.Blocks {
			switch b.BlockType() {
			case BlockTypeText:
				counts.textBlocks++
			case BlockTypeImage:
				counts.images++
			}
		}
		counts.drawings += len(p.LineDrawings)
	}
	for _, rp := range raw.Pages {
		counts.images += len(rp.Images)
	}
	return counts
}
