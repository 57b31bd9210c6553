package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowron/foss-api/internal/pdf"
)

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "packed black", input: 0, want: "#000000"},
		{name: "packed white", input: 0xffffff, want: "#ffffff"},
		{name: "packed red", input: 0xff0000, want: "#ff0000"},
		{name: "packed mixed", input: 0x1a2b3c, want: "#1a2b3c"},
		{name: "int64", input: int64(0x00ff00), want: "#00ff00"},
		{name: "float from json decode", input: float64(255), want: "#0000ff"},
		{name: "hex string passes through", input: "#1a2b3c", want: "#1a2b3c"},
		{name: "nil falls back to black", input: nil, want: "#000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeColor(tt.input))
		})
	}
}

func TestNormalizeColorIdempotent(t *testing.T) {
	once := normalizeColor(0x336699)
	assert.Equal(t, once, normalizeColor(once))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello", sanitizeText("hello"))
	assert.Equal(t, "", sanitizeText(string([]byte{0xff, 0xfe, 0x41})))
	assert.Equal(t, "ünïcödé", sanitizeText("ünïcödé"))
}

func TestNormalizeBBox(t *testing.T) {
	assert.Equal(t, [4]float64{1, 2, 3, 4}, normalizeBBox([4]float64{1, 2, 3, 4}))
	assert.Equal(t, [4]float64{1, 2, 3, 4}, normalizeBBox([4]float64{3, 4, 1, 2}))
	assert.Equal(t, [4]float64{1, 2, 3, 4}, normalizeBBox([4]float64{3, 2, 1, 4}))
}

func TestDedupLineDrawings(t *testing.T) {
	items := []pdf.RawDrawing{
		{Kind: pdf.DrawLine, P0: [2]float64{0, 0}, P1: [2]float64{1, 1}},
		{Kind: pdf.DrawLine, P0: [2]float64{0.001, 0.004}, P1: [2]float64{1, 1}}, // rounds to the first
		{Kind: pdf.DrawCurve, P0: [2]float64{5, 5}, P1: [2]float64{6, 6}},
		{Kind: pdf.DrawRect, P0: [2]float64{7, 7}, P1: [2]float64{8, 8}},
		{Kind: pdf.DrawLine, P0: [2]float64{2, 2}, P1: [2]float64{3, 3}},
	}

	got := dedupLineDrawings(items)

	require.Len(t, got, 2)
	assert.Equal(t, [4]float64{0, 0, 1, 1}, got[0])
	assert.Equal(t, [4]float64{2, 2, 3, 3}, got[1])
}

func TestDedupLineDrawingsPreservesFirstSeenOrder(t *testing.T) {
	items := []pdf.RawDrawing{
		{Kind: pdf.DrawLine, P0: [2]float64{9, 9}, P1: [2]float64{10, 10}},
		{Kind: pdf.DrawLine, P0: [2]float64{1, 1}, P1: [2]float64{2, 2}},
		{Kind: pdf.DrawLine, P0: [2]float64{9, 9}, P1: [2]float64{10, 10}},
	}

	got := dedupLineDrawings(items)

	require.Len(t, got, 2)
	assert.Equal(t, [4]float64{9, 9, 10, 10}, got[0])
	assert.Equal(t, [4]float64{1, 1, 2, 2}, got[1])
}

func TestBuildPages(t *testing.T) {
	raw := &pdf.RawDocument{
		Pages: []pdf.RawPage{
			{
				Width:  595.2,
				Height: 841.8,
				Blocks: []pdf.RawBlock{
					{
						Number: 0,
						Type:   pdf.RawBlockText,
						BBox:   [4]float64{10, 10, 200, 30},
						Lines: []pdf.RawLine{
							{
								Spans: []pdf.RawSpan{
									{Size: 12, Font: "Helvetica", Color: 0xff0000, Text: "first line"},
								},
							},
						},
					},
					{
						Number: 1,
						Type:   pdf.RawBlockImage,
						BBox:   [4]float64{50, 100, 300, 400},
						Image: &pdf.RawImage{
							Width:  250,
							Height: 300,
							Ext:    "png",
							Size:   1 << 16,
							Data:   []byte{0x89, 0x50, 0x4e, 0x47},
						},
					},
				},
				Drawings: []pdf.RawDrawing{
					{Kind: pdf.DrawLine, P0: [2]float64{0, 0}, P1: [2]float64{100, 0}},
				},
			},
			{Width: 595.2, Height: 841.8, Rotation: 90},
		},
	}

	pages := buildPages(raw)

	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, 2, pages[1].Number)
	assert.Equal(t, 90, pages[1].Rotation)

	require.Len(t, pages[0].Blocks, 2)
	text, ok := pages[0].Blocks[0].(TextBlock)
	require.True(t, ok)
	assert.Equal(t, "first line", text.Lines[0].Spans[0].Text)
	assert.Equal(t, "#ff0000", text.Lines[0].Spans[0].Color)

	img, ok := pages[0].Blocks[1].(ImageBlock)
	require.True(t, ok)
	assert.Equal(t, "png", img.Ext)
	assert.Equal(t, int64(1<<16), img.Size)
	assert.Empty(t, img.Image, "image bytes must be dropped from the response")

	require.Len(t, pages[0].LineDrawings, 1)
	assert.Equal(t, [4]float64{0, 0, 100, 0}, pages[0].LineDrawings[0])
}

func TestToTOC(t *testing.T) {
	assert.Nil(t, toTOC(nil))
	assert.Nil(t, toTOC([]pdf.TOCEntry{}))

	got := toTOC([]pdf.TOCEntry{
		{Level: 1, Title: "Intro", Page: 1},
		{Level: 2, Title: "Setup" + string([]byte{0xff}), Page: 4},
	})
	require.Len(t, got, 2)
	assert.Equal(t, TOCEntry{Level: 1, Title: "Intro", Page: 1}, got[0])
	assert.Equal(t, "Setup", got[1].Title)
}

func TestCountContent(t *testing.T) {
	raw := &pdf.RawDocument{
		Pages: []pdf.RawPage{
			{Images: []pdf.RawImage{{Width: 10, Height: 10}}},
		},
	}
	pages := []Page{
		{
			Blocks: []Block{
				TextBlock{Type: BlockTypeText},
				TextBlock{Type: BlockTypeText},
				ImageBlock{Type: BlockTypeImage},
			},
			LineDrawings: [][4]float64{{0, 0, 1, 1}},
		},
	}

	counts := countContent(pages, raw)

	assert.Equal(t, 2, counts.textBlocks)
	assert.Equal(t, 2, counts.images, "page-level image references count alongside image blocks")
	assert.Equal(t, 1, counts.drawings)
}
