package handlers

import "net/http"

// HealthHandler serves the liveness endpoints.
type HealthHandler struct {
	service string
	version string
}

// NewHealthHandler creates a health handler reporting the given identity.
func NewHealthHandler(service, version string) *HealthHandler {
	return &HealthHandler{service: service, version: version}
}

// Status handles GET / and GET /healthcheck.
func (h *HealthHandler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": h.service,
		"version": h.version,
	})
}
