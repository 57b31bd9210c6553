package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowron/foss-api/internal/extract"
	"github.com/knowron/foss-api/internal/observability"
	"github.com/knowron/foss-api/internal/pdf"
	"github.com/knowron/foss-api/internal/storage"
)

type stubGateway struct {
	objects map[string][]byte
}

func (g *stubGateway) Fetch(_ context.Context, key string) ([]byte, error) {
	if data, ok := g.objects[key]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
}

func (g *stubGateway) Upload(_ context.Context, key string, _ []byte) (string, error) {
	return key, nil
}

type stubEngine struct{}

func (stubEngine) Open(_ context.Context, _ []byte) (*pdf.RawDocument, error) {
	return &pdf.RawDocument{
		Pages: []pdf.RawPage{
			{
				Width:  595.2,
				Height: 841.8,
				Blocks: []pdf.RawBlock{
					{
						Type: pdf.RawBlockText,
						Lines: []pdf.RawLine{
							{Spans: []pdf.RawSpan{{Size: 12, Font: "Helvetica", Color: 0, Text: "hello"}}},
						},
					},
				},
			},
		},
	}, nil
}

func newTestHandler() *ExtractHandler {
	logger := observability.Nop()
	gw := &stubGateway{objects: map[string][]byte{
		"docs/a.pdf": []byte("doc-a"),
		"docs/b.pdf": []byte("doc-b"),
	}}
	svc := extract.NewService(gw, stubEngine{}, nil, logger, extract.ServiceConfig{Version: "1.0", Workers: 2})
	envelopes := extract.NewEnvelopeBuilder(logger, "foss-api", "staging")
	return NewExtractHandler(logger, svc, envelopes)
}

func TestExtractHandlerSuccess(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest("POST", "/api/v1/extract?path=docs%2Fa.pdf&path=docs%2Fb.pdf", nil)
	w := httptest.NewRecorder()

	h.Extract(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var results []json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 2)

	var first extract.ExtractedDoc
	require.NoError(t, json.Unmarshal(results[0], &first))
	assert.Equal(t, "docs/a.pdf", first.Path)
	assert.Len(t, first.Hash, 64)
}

func TestExtractHandlerMixedResults(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest("POST", "/api/v1/extract?path=docs%2Fa.pdf&path=docs%2Fmissing.pdf", nil)
	w := httptest.NewRecorder()

	h.Extract(w, r)

	require.Equal(t, http.StatusOK, w.Code, "per-document failures do not fail the batch")

	var results []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 2)
	assert.Contains(t, results[0], "hash")
	assert.Equal(t, float64(http.StatusNotFound), results[1]["statusCode"])
}

func TestExtractHandlerMissingPaths(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest("POST", "/api/v1/extract", nil)
	w := httptest.NewRecorder()

	h.Extract(w, r)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var e extract.ErrorModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.False(t, e.Success)
	assert.Equal(t, http.StatusUnprocessableEntity, e.StatusCode)
	assert.Contains(t, e.Message, "path")
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler("foss-api", "1.0")
	r := httptest.NewRequest("GET", "/healthcheck", nil)
	w := httptest.NewRecorder()

	h.Status(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "foss-api", body["service"])
}
