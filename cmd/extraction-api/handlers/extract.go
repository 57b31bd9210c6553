// Package handlers provides HTTP handlers for the extraction API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/knowron/foss-api/internal/extract"
	"github.com/knowron/foss-api/internal/observability"
)

// ExtractHandler handles batch extraction requests.
type ExtractHandler struct {
	logger    *observability.Logger
	svc       *extract.Service
	envelopes *extract.EnvelopeBuilder
}

// NewExtractHandler creates a new extraction handler.
func NewExtractHandler(logger *observability.Logger, svc *extract.Service, envelopes *extract.EnvelopeBuilder) *ExtractHandler {
	return &ExtractHandler{
		logger:    logger.With("handler"),
		svc:       svc,
		envelopes: envelopes,
	}
}

// Extract handles POST /api/v1/extract. Document paths arrive as repeated
// "path" query parameters; each item in the response array is either an
// extracted document or a per-path failure record, in request order.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			e := h.envelopes.ForRequest(r, "", http.StatusInternalServerError,
				fmt.Errorf("unexpected failure: %v", rec))
			writeJSON(w, http.StatusInternalServerError, e)
		}
	}()

	paths := r.URL.Query()["path"]
	if len(paths) == 0 {
		e := h.envelopes.ForRequest(r, "", http.StatusUnprocessableEntity,
			errors.New("at least one path query parameter is required"))
		writeJSON(w, http.StatusUnprocessableEntity, e)
		return
	}

	h.logger.Info().Int("documents", len(paths)).Msg("Batch extraction requested")

	results := h.svc.ExtractBatch(r.Context(), paths)
	writeJSON(w, http.StatusOK, results)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
