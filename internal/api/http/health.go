package http

import (
	"net/http"
	"time"

	"github.com/cyanix-ai/cyanix/pkg/httpx"
)

// HealthHandler serves the unauthenticated health probe.
type HealthHandler struct {
	Environment string
}

// HandleHealth handles GET /health
//
//	@Summary	Liveness probe
//	@Tags		System
//	@Produce	json
//	@Success	200	{object}	healthResponse
//	@Router		/health [get].
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Environment: h.Environment,
	})
}
