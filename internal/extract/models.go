// Package extract implements the document extraction pipeline: normalization
// of the parser's raw output into a typed document model, content-type
// classification, per-document extraction with fault isolation, and the batch
// orchestrator running extractions concurrently.
package extract

import (
	"encoding/json"
	"fmt"
)

// Block type tags. These discriminate the two page-region variants at the
// wire boundary.
const (
	BlockTypeText  = 0
	BlockTypeImage = 1
)

// Span is a run of styled text within a line.
type Span struct {
	Size  float64 `json:"size"`
	Flags int     `json:"flags"`
	Font  string  `json:"font"`
	// Color is always a 7-character "#rrggbb" string once normalized.
	Color     string     `json:"color"`
	Ascender  float64    `json:"ascender"`
	Descender float64    `json:"descender"`
	Text      string     `json:"text"`
	Origin    [2]float64 `json:"origin"`
	BBox      [4]float64 `json:"bbox"`
}

// Line is an ordered sequence of spans sharing a baseline.
type Line struct {
	Spans []Span     `json:"spans"`
	WMode int        `json:"wmode"`
	Dir   [2]float64 `json:"dir"`
	BBox  [4]float64 `json:"bbox"`
}

// Block is a page region. It is implemented by TextBlock and ImageBlock only;
// the closed set makes the two kinds exhaustive at compile time.
type Block interface {
	BlockType() int
}

// TextBlock is a page region containing ordered lines of text.
type TextBlock struct {
	Number int        `json:"number"`
	Type   int        `json:"type"` // always BlockTypeText
	BBox   [4]float64 `json:"bbox"`
	Lines  []Line     `json:"lines"`
}

// BlockType implements Block.
func (TextBlock) BlockType() int { return BlockTypeText }

// ImageBlock is a page region describing an embedded image. Image bytes are
// deliberately dropped from the output to bound response size, so Image is
// always the empty string.
type ImageBlock struct {
	Number     int        `json:"number"`
	Type       int        `json:"type"` // always BlockTypeImage
	BBox       [4]float64 `json:"bbox"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Ext        string     `json:"ext"`
	Colorspace int        `json:"colorspace"`
	XRes       int        `json:"xres"`
	YRes       int        `json:"yres"`
	BPC        int        `json:"bpc"`
	Transform  [6]float64 `json:"transform"`
	Size       int64      `json:"size"`
	Image      string     `json:"image"`
}

// BlockType implements Block.
func (ImageBlock) BlockType() int { return BlockTypeImage }

// Page is one extracted page. Pages are 1-indexed.
type Page struct {
	Number   int     `json:"number"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation int     `json:"rotation"`
	Blocks   []Block `json:"blocks"`
	// LineDrawings holds deduplicated straight segments as (x0,y0,x1,y1)
	// tuples rounded to 2 decimals, in first-seen order.
	LineDrawings [][4]float64 `json:"lineDrawings"`
}

// UnmarshalJSON resolves the polymorphic block list keyed on the "type" tag.
func (p *Page) UnmarshalJSON(data []byte) error {
	type pageAlias Page
	aux := struct {
		*pageAlias
		Blocks []json.RawMessage `json:"blocks"`
	}{pageAlias: (*pageAlias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if len(aux.Blocks) == 0 {
		p.Blocks = nil
		return nil
	}

	p.Blocks = make([]Block, 0, len(aux.Blocks))
	for _, raw := range aux.Blocks {
		var probe struct {
			Type int `json:"type"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return err
		}
		switch probe.Type {
		case BlockTypeText:
			var b TextBlock
			if err := json.Unmarshal(raw, &b); err != nil {
				return err
			}
			p.Blocks = append(p.Blocks, b)
		case BlockTypeImage:
			var b ImageBlock
			if err := json.Unmarshal(raw, &b); err != nil {
				return err
			}
			p.Blocks = append(p.Blocks, b)
		default:
			return fmt.Errorf("unknown block type %d", probe.Type)
		}
	}
	return nil
}

// TOCEntry is one table-of-contents entry. It serializes as the 3-element
// array [level, title, targetPage].
type TOCEntry struct {
	Level int
	Title string
	Page  int
}

// MarshalJSON renders the entry as [level, title, page].
func (e TOCEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{e.Level, e.Title, e.Page})
}

// UnmarshalJSON parses the [level, title, page] array form.
func (e *TOCEntry) UnmarshalJSON(data []byte) error {
	var arr [3]json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if err := json.Unmarshal(arr[0], &e.Level); err != nil {
		return err
	}
	if err := json.Unmarshal(arr[1], &e.Title); err != nil {
		return err
	}
	return json.Unmarshal(arr[2], &e.Page)
}

// ExtractedDoc is a fully extracted document.
type ExtractedDoc struct {
	Path string `json:"path"`
	// Hash is the SHA-256 hex digest of the source bytes: the document's
	// content-addressed identity.
	Hash              string  `json:"hash"`
	ElapsedSeconds    float64 `json:"elapsedSeconds"`
	ExtractionVersion string  `json:"extractionVersion"`
	// TOC is nil when the document has no table of contents; it serializes
	// as null, never as an empty array.
	TOC   []TOCEntry `json:"toc"`
	Pages []Page     `json:"pages"`
}

// NewExtractedDoc assembles an ExtractedDoc, enforcing the hash invariant and
// rounding the elapsed time to 2 decimals.
func NewExtractedDoc(path, hash string, elapsedSeconds float64, toc []TOCEntry, pages []Page, version string) (*ExtractedDoc, error) {
	if !isHexDigest(hash) {
		return nil, fmt.Errorf("invalid document hash %q: want 64 hex characters", hash)
	}
	if len(toc) == 0 {
		toc = nil
	}
	return &ExtractedDoc{
		Path:              path,
		Hash:              hash,
		ElapsedSeconds:    round2(elapsedSeconds),
		ExtractionVersion: version,
		TOC:               toc,
		Pages:             pages,
	}, nil
}

func isHexDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// FailedExtraction is returned in place of an ExtractedDoc when any stage
// fails for one path. Failures are data, not errors, once they cross the
// per-document boundary.
type FailedExtraction struct {
	Path       string `json:"path"`
	StatusCode int    `json:"statusCode"`
	Detail     string `json:"detail"`
}

// Result is one batch item: exactly one of Doc or Failure is set.
type Result struct {
	Doc     *ExtractedDoc
	Failure *FailedExtraction
}

// MarshalJSON renders whichever side of the union is populated.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Failure != nil {
		return json.Marshal(r.Failure)
	}
	return json.Marshal(r.Doc)
}

// Success is the async-flow success envelope.
type Success struct {
	Success bool   `json:"success"` // always true
	DocHash string `json:"docHash"`
	// Key points at the uploaded extraction result; it is nil for EMPTY and
	// IMAGE_BASED documents, which are never persisted.
	Key     *string `json:"key"`
	DocType string  `json:"docType"`
}

// Envelope is the async single-document result: a Success or an ErrorModel.
type Envelope interface {
	envelope()
}

func (Success) envelope()    {}
func (ErrorModel) envelope() {}
