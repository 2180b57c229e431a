package handlers

import (
	"net/http"
	"strconv"

	"distro-backend/internal/middleware"
	"distro-backend/internal/repositories"
	"distro-backend/internal/timeutil"

	"github.com/gorilla/mux"
)

// PaymentRecordHandler gives the receipt and reporting collaborators
// read-only, post-commit access to the audit trail.
type PaymentRecordHandler struct {
	Payments *repositories.PaymentRecordRepository
}

func NewPaymentRecordHandler(payments *repositories.PaymentRecordRepository) *PaymentRecordHandler {
	return &PaymentRecordHandler{Payments: payments}
}

// GET /api/payment-records/{id}
func (h *PaymentRecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid payment record id", http.StatusBadRequest)
		return
	}

	record, err := h.Payments.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// GET /api/customers/{id}/payment-records?limit=&offset=
func (h *PaymentRecordHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid customer id", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	records, err := h.Payments.ListByCustomer(r.Context(), customerID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// ListMine is the agent's own collection log for the day.
// GET /api/payment-records/mine?date=YYYY-MM-DD
func (h *PaymentRecordHandler) ListMine(w http.ResponseWriter, r *http.Request) {
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

	records, err := h.Payments.ListByCollectorAndDate(ctx, agentID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
