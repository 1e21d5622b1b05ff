package handler

import (
	"net/http"
	"time"

	"system_sentinel/internal/common"

	"github.com/go-chi/chi/v5"
)

const Version = "0.1.0"

// SystemHandler serves the status and metrics placeholders consumed by the
// monitoring dashboard. The metrics values are static until a real collector
// backs this endpoint.
type SystemHandler struct{}

func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

func (h *SystemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.status)
	r.Get("/metrics", h.metrics)
}

func (h *SystemHandler) status(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "operational",
		"timestamp": time.Now().UTC(),
		"version":   Version,
	})
}

func (h *SystemHandler) metrics(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"cpu_usage":    45.2,
		"memory_usage": 67.8,
		"disk_usage":   34.5,
		"network_traffic": map[string]int64{
			"in":  1024000,
			"out": 2048000,
		},
		"timestamp": time.Now().UTC(),
	})
}
