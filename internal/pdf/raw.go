// Package pdf defines the boundary to the structural PDF parser: the raw
// per-page records an engine produces from a byte stream, before any
// normalization. The production engine wraps MuPDF via go-fitz; tests supply
// fabricated records.
package pdf

import (
	"context"
	"fmt"
)

// Block type tags, matching MuPDF's structured-text discriminants.
const (
	RawBlockText  = 0
	RawBlockImage = 1
)

// Drawing primitive kinds, matching MuPDF's vector item tags.
const (
	DrawLine  = "l"
	DrawCurve = "c"
	DrawRect  = "re"
	DrawQuad  = "qu"
)

// RawSpan is a run of styled text as the engine reports it.
type RawSpan struct {
	Size      float64
	Flags     int
	Font      string
	Color     any // packed sRGB integer or a "#rrggbb" string, engine-dependent
	Ascender  float64
	Descender float64
	Text      string
	Origin    [2]float64
	BBox      [4]float64
}

// RawLine is an ordered run of spans sharing a baseline.
type RawLine struct {
	Spans []RawSpan
	WMode int
	Dir   [2]float64
	BBox  [4]float64
}

// RawImage describes an embedded image. Data may be nil when the engine does
// not materialize pixel bytes.
type RawImage struct {
	Width      int
	Height     int
	Ext        string
	Colorspace int
	XRes       int
	YRes       int
	BPC        int
	Transform  [6]float64
	Size       int64
	Data       []byte
}

// RawBlock is a page region, discriminated by Type: text blocks carry Lines,
// image blocks carry Image.
type RawBlock struct {
	Number int
	Type   int
	BBox   [4]float64
	Lines  []RawLine
	Image  *RawImage
}

// RawDrawing is a single vector-drawing item.
type RawDrawing struct {
	Kind string
	P0   [2]float64
	P1   [2]float64
}

// RawPage is one page of the parsed document.
type RawPage struct {
	Width    float64
	Height   float64
	Rotation int
	Blocks   []RawBlock
	// Images lists images referenced at the page level, in addition to any
	// embedded as image blocks.
	Images   []RawImage
	Drawings []RawDrawing
}

// TOCEntry is one outline entry: nesting level, title, 1-indexed target page.
type TOCEntry struct {
	Level int
	Title string
	Page  int
}

// RawDocument is the engine's full structural description of a document.
type RawDocument struct {
	Pages []RawPage
	TOC   []TOCEntry
}

// ParseError reports that the byte stream is not a well-formed document or
// that the engine failed while traversing it.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pdf parse: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Engine opens a PDF byte stream and produces its raw structural description.
// Implementations must be safe for concurrent use.
type Engine interface {
	Open(ctx context.Context, data []byte) (*RawDocument, error)
}
