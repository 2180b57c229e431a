package handlers

import (
	"net/http"
	"strconv"

	"distro-backend/internal/middleware"
	"distro-backend/internal/repositories"
	"distro-backend/internal/storage"
	"distro-backend/internal/timeutil"

	"github.com/gorilla/mux"
)

// maxProofSize caps proof-of-delivery uploads at 8 MiB.
const maxProofSize = 8 << 20

type DeliveryHandler struct {
	Deliveries *repositories.DeliveryRepository
	Proofs     *storage.ProofStore
}

func NewDeliveryHandler(deliveries *repositories.DeliveryRepository, proofs *storage.ProofStore) *DeliveryHandler {
	return &DeliveryHandler{Deliveries: deliveries, Proofs: proofs}
}

// ListMine returns the calling agent's deliveries for a date.
// GET /api/deliveries/mine?date=YYYY-MM-DD
func (h *DeliveryHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = timeutil.BusinessDate(timeutil.Now())
	}

	deliveries, err := h.Deliveries.ListByAgentAndDate(ctx, agentID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deliveries)
}

// GET /api/deliveries/{id}
func (h *DeliveryHandler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid delivery id", http.StatusBadRequest)
		return
	}

	delivery, err := h.Deliveries.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, delivery)
}

// UploadProof stores a proof-of-delivery photo before completion and
// attaches its key to the delivery.
// POST /api/deliveries/{id}/proof
func (h *DeliveryHandler) UploadProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agentID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if h.Proofs == nil {
		http.Error(w, "Proof storage is not configured", http.StatusServiceUnavailable)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid delivery id", http.StatusBadRequest)
		return
	}

	delivery, err := h.Deliveries.Get(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if delivery.DelivererID != agentID {
		http.Error(w, "Forbidden - delivery assigned to another agent", http.StatusForbidden)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key, err := h.Proofs.Upload(ctx, id, contentType, http.MaxBytesReader(w, r.Body, maxProofSize))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Deliveries.SetProofKey(ctx, id, key); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"proof_key": key})
}
