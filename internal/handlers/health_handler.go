package handlers

import (
	"net/http"

	"distro-backend/internal/health"
)

type HealthHandler struct {
	checker *health.HealthChecker
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// BasicHealth is the liveness probe.
func (h *HealthHandler) BasicHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessHealth checks the database before reporting ready.
func (h *HealthHandler) ReadinessHealth(w http.ResponseWriter, r *http.Request) {
	status := h.checker.CheckBasic()
	if status.Status == "healthy" {
		writeJSON(w, http.StatusOK, status)
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, status)
}
