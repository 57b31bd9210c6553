package pdf

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// FitzEngine is the production Engine, backed by MuPDF through go-fitz. Each
// Open call owns its own fitz document, so a single engine value can serve
// concurrent extractions.
//
// go-fitz exposes MuPDF's structured HTML and SVG exports rather than the
// structured-text dictionaries directly; the mappers in html.go and svg.go
// turn those exports into raw records. The page /Rotate entry is not surfaced
// by go-fitz, so pages report rotation 0 (the exports are already rendered
// upright).
type FitzEngine struct{}

// NewFitzEngine creates the MuPDF-backed engine.
func NewFitzEngine() *FitzEngine { return &FitzEngine{} }

// Open parses the byte stream and returns its raw structural description.
func (e *FitzEngine) Open(ctx context.Context, data []byte) (*RawDocument, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	defer doc.Close()

	raw := &RawDocument{}

	if outlines, err := doc.ToC(); err == nil {
		for _, o := range outlines {
			raw.TOC = append(raw.TOC, TOCEntry{Level: o.Level, Title: o.Title, Page: o.Page})
		}
	}

	for n := 0; n < doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := RawPage{}
		if bound, err := doc.Bound(n); err == nil {
			page.Width = float64(bound.Dx())
			page.Height = float64(bound.Dy())
		}

		markup, err := doc.HTML(n, false)
		if err != nil {
			return nil, &ParseError{Err: fmt.Errorf("page %d: %w", n+1, err)}
		}
		blocks, err := parseStextHTML(markup)
		if err != nil {
			return nil, &ParseError{Err: fmt.Errorf("page %d: %w", n+1, err)}
		}
		page.Blocks = blocks

		// Vector drawings come from the SVG export. A page that cannot be
		// rendered as SVG still extracts; it just reports no drawings.
		if svg, err := doc.SVG(n); err == nil {
			page.Drawings = parseSVGDrawings(svg)
		}

		raw.Pages = append(raw.Pages, page)
	}

	return raw, nil
}
