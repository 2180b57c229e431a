package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"distro-backend/internal/models"
	"distro-backend/internal/repositories"

	"github.com/gorilla/mux"
)

type CustomerHandler struct {
	Customers *repositories.CustomerRepository
	Orders    *repositories.OrderRepository
}

func NewCustomerHandler(customers *repositories.CustomerRepository, orders *repositories.OrderRepository) *CustomerHandler {
	return &CustomerHandler{Customers: customers, Orders: orders}
}

// CreateCustomer registers a customer with an optional credit limit.
// POST /api/customers
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Phone == "" {
		http.Error(w, "Missing required fields: name, phone", http.StatusBadRequest)
		return
	}

	customer, err := h.Customers.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

// GET /api/customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Customers.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

// GET /api/customers/{id}
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid customer id", http.StatusBadRequest)
		return
	}

	customer, err := h.Customers.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// GetDebt is what the agent app shows before a collection visit.
// GET /api/customers/{id}/debt
func (h *CustomerHandler) GetDebt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid customer id", http.StatusBadRequest)
		return
	}

	summary, err := h.Customers.DebtSummary(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GET /api/customers/{id}/orders
func (h *CustomerHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid customer id", http.StatusBadRequest)
		return
	}

	orders, err := h.Orders.ListByCustomer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
