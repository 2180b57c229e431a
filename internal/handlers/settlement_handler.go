package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"distro-backend/internal/middleware"
	"distro-backend/internal/models"
	"distro-backend/internal/services"

	"github.com/gorilla/mux"
)

// SettlementHandler exposes the three money-moving entry points.
type SettlementHandler struct {
	Settlements *services.SettlementService
}

func NewSettlementHandler(settlements *services.SettlementService) *SettlementHandler {
	return &SettlementHandler{Settlements: settlements}
}

// CompleteDelivery settles a delivery the calling agent just finished.
// POST /api/deliveries/{id}/complete
func (h *SettlementHandler) CompleteDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	callerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	deliveryID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid delivery id", http.StatusBadRequest)
		return
	}

	var req models.CompleteDeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.Settlements.CompleteDelivery(ctx, deliveryID, callerID, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// FailDelivery records a failed attempt; no money moves.
// POST /api/deliveries/{id}/fail
func (h *SettlementHandler) FailDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	callerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	deliveryID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid delivery id", http.StatusBadRequest)
		return
	}

	var req models.FailDeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Reason == "" {
		http.Error(w, "Missing required field: reason", http.StatusBadRequest)
		return
	}

	delivery, err := h.Settlements.FailDelivery(ctx, deliveryID, callerID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, delivery)
}

type collectDebtRequest struct {
	CustomerID int                   `json:"customer_id"`
	Amount     float64               `json:"amount"`
	Mode       models.CollectionMode `json:"mode"`
}

// CollectDebt is the standalone debt-collection path.
// POST /api/debt-collections
func (h *SettlementHandler) CollectDebt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	callerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req collectDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CustomerID <= 0 {
		http.Error(w, "Missing required field: customer_id", http.StatusBadRequest)
		return
	}

	result, err := h.Settlements.CollectDebt(ctx, req.CustomerID, callerID, req.Amount, req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
