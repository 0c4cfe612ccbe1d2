package transport

import (
	"net/http"
	"time"

	"items-api/internal/domain"
	"items-api/internal/middleware"
)

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Service     string `json:"service"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// HealthHandler reports service liveness. It never touches the store.
type HealthHandler struct {
	service     string
	version     string
	environment string
	clock       func() time.Time
}

// NewHealthHandler creates a HealthHandler reporting the given service identity
func NewHealthHandler(service, version, environment string) *HealthHandler {
	return &HealthHandler{
		service:     service,
		version:     version,
		environment: environment,
		clock:       time.Now,
	}
}

// Health answers with the liveness payload
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithData(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Timestamp:   h.clock().UTC().Format(domain.TimestampLayout),
		Service:     h.service,
		Version:     h.version,
		Environment: h.environment,
	})
}
