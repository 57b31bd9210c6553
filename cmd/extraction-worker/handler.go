package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/knowron/foss-api/internal/extract"
	"github.com/knowron/foss-api/internal/observability"
)

// InvokeHandler handles worker invocations.
type InvokeHandler struct {
	logger    *observability.Logger
	svc       *extract.Service
	envelopes *extract.EnvelopeBuilder
}

// NewInvokeHandler creates a new invocation handler.
func NewInvokeHandler(logger *observability.Logger, svc *extract.Service, envelopes *extract.EnvelopeBuilder) *InvokeHandler {
	return &InvokeHandler{
		logger:    logger.With("invoke"),
		svc:       svc,
		envelopes: envelopes,
	}
}

// InvokeRequest is the invocation payload.
type InvokeRequest struct {
	Path string `json:"path"`
}

// Invoke handles POST /invoke: extract one document, classify it, persist it
// when text-based, and return the result envelope. The HTTP status mirrors
// the envelope: 200 for success, the envelope's own status code for errors.
func (h *InvokeHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	invocationID := uuid.NewString()

	var req InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		e := h.envelopes.ForRequest(r, "", http.StatusUnprocessableEntity, err)
		writeJSON(w, http.StatusUnprocessableEntity, e)
		return
	}
	if req.Path == "" {
		e := h.envelopes.ForRequest(r, "", http.StatusUnprocessableEntity,
			errors.New("path is required"))
		writeJSON(w, http.StatusUnprocessableEntity, e)
		return
	}

	h.logger.Info().
		Str("invocation_id", invocationID).
		Str("path", req.Path).
		Msg("Invocation received")

	env := h.svc.ExtractDocument(r.Context(), req.Path, h.envelopes)

	status := http.StatusOK
	if e, ok := env.(extract.ErrorModel); ok {
		status = e.StatusCode
	}
	writeJSON(w, status, env)
}

// Health handles GET /health.
func (h *InvokeHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
