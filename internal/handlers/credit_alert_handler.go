package handlers

import (
	"net/http"
	"strconv"

	"distro-backend/internal/repositories"

	"github.com/gorilla/mux"
)

type CreditAlertHandler struct {
	Alerts *repositories.CreditAlertRepository
}

func NewCreditAlertHandler(alerts *repositories.CreditAlertRepository) *CreditAlertHandler {
	return &CreditAlertHandler{Alerts: alerts}
}

// GET /api/credit-alerts
func (h *CreditAlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	alerts, err := h.Alerts.ListUnacknowledged(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

// POST /api/credit-alerts/{id}/ack
func (h *CreditAlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid alert id", http.StatusBadRequest)
		return
	}
	if err := h.Alerts.Acknowledge(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}
