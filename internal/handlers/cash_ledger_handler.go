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

type CashLedgerHandler struct {
	Ledgers *services.CashLedgerService
}

func NewCashLedgerHandler(ledgers *services.CashLedgerService) *CashLedgerHandler {
	return &CashLedgerHandler{Ledgers: ledgers}
}

// Open starts the calling agent's day explicitly.
// POST /api/cash-ledgers/open
func (h *CashLedgerHandler) Open(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.OpenLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ledger, err := h.Ledgers.Open(ctx, agentID, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ledger)
}

// GetMine returns the calling agent's ledger for a date (default today).
// GET /api/cash-ledgers/mine?date=YYYY-MM-DD
func (h *CashLedgerHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ledger, err := h.Ledgers.GetForAgent(ctx, agentID, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

// Close ends the day: declared cash and checks in, variance out.
// POST /api/cash-ledgers/{id}/close
func (h *CashLedgerHandler) Close(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	ledgerID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ledger id", http.StatusBadRequest)
		return
	}

	var req models.CloseLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ledger, err := h.Ledgers.Close(ctx, ledgerID, agentID, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

// Remit hands the closed ledger's cash over as a pending remittance.
// POST /api/cash-ledgers/{id}/remit
func (h *CashLedgerHandler) Remit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	ledgerID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ledger id", http.StatusBadRequest)
		return
	}

	remittance, err := h.Ledgers.Remit(ctx, ledgerID, agentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, remittance)
}

// Confirm is the admin accepting a pending remittance.
// POST /api/remittances/{id}/confirm
func (h *CashLedgerHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	adminID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	remittanceID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid remittance id", http.StatusBadRequest)
		return
	}

	remittance, err := h.Ledgers.Confirm(ctx, remittanceID, adminID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, remittance)
}

// ListByDate shows all agents' ledgers for one day (admin only).
// GET /api/cash-ledgers?date=YYYY-MM-DD
func (h *CashLedgerHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	ledgers, err := h.Ledgers.ListByDate(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledgers)
}

// ListPendingRemittances lists cash waiting for admin confirmation.
// GET /api/remittances/pending
func (h *CashLedgerHandler) ListPendingRemittances(w http.ResponseWriter, r *http.Request) {
	remittances, err := h.Ledgers.ListPendingRemittances(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, remittances)
}
