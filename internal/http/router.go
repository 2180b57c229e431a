package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"distro-backend/internal/handlers"
	"distro-backend/internal/middleware"
)

func NewRouter(
	settlementHandler *handlers.SettlementHandler,
	cashLedgerHandler *handlers.CashLedgerHandler,
	customerHandler *handlers.CustomerHandler,
	deliveryHandler *handlers.DeliveryHandler,
	paymentRecordHandler *handlers.PaymentRecordHandler,
	creditAlertHandler *handlers.CreditAlertHandler,
	syncHandler *handlers.SyncHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.PanicRecovery)
	r.Use(middleware.MetricsMiddleware)

	// Public endpoints
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Protected API routes - Deliveries and settlement
	deliveriesAPI := r.PathPrefix("/api/deliveries").Subrouter()
	deliveriesAPI.Use(authMiddleware.Authenticate)
	deliveriesAPI.HandleFunc("/mine", deliveryHandler.ListMine).Methods("GET")
	deliveriesAPI.HandleFunc("/{id}", deliveryHandler.GetDelivery).Methods("GET")
	deliveriesAPI.HandleFunc("/{id}/proof", deliveryHandler.UploadProof).Methods("POST")
	deliveriesAPI.HandleFunc("/{id}/complete", settlementHandler.CompleteDelivery).Methods("POST")
	deliveriesAPI.HandleFunc("/{id}/fail", settlementHandler.FailDelivery).Methods("POST")

	// Protected API routes - Standalone debt collection
	debtCollectionsAPI := r.PathPrefix("/api/debt-collections").Subrouter()
	debtCollectionsAPI.Use(authMiddleware.Authenticate)
	debtCollectionsAPI.HandleFunc("", settlementHandler.CollectDebt).Methods("POST")

	// Protected API routes - Customers
	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", customerHandler.ListCustomers).Methods("GET")
	customersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(customerHandler.CreateCustomer)).ServeHTTP).Methods("POST")
	customersAPI.HandleFunc("/{id}", customerHandler.GetCustomer).Methods("GET")
	customersAPI.HandleFunc("/{id}/debt", customerHandler.GetDebt).Methods("GET")
	customersAPI.HandleFunc("/{id}/orders", customerHandler.ListOrders).Methods("GET")
	customersAPI.HandleFunc("/{id}/payment-records", paymentRecordHandler.ListByCustomer).Methods("GET")

	// Protected API routes - Payment records (append-only audit trail)
	paymentRecordsAPI := r.PathPrefix("/api/payment-records").Subrouter()
	paymentRecordsAPI.Use(authMiddleware.Authenticate)
	paymentRecordsAPI.HandleFunc("/mine", paymentRecordHandler.ListMine).Methods("GET")
	paymentRecordsAPI.HandleFunc("/{id}", paymentRecordHandler.GetRecord).Methods("GET")

	// Protected API routes - Daily cash ledgers
	ledgersAPI := r.PathPrefix("/api/cash-ledgers").Subrouter()
	ledgersAPI.Use(authMiddleware.Authenticate)
	ledgersAPI.HandleFunc("/open", cashLedgerHandler.Open).Methods("POST")
	ledgersAPI.HandleFunc("/mine", cashLedgerHandler.GetMine).Methods("GET")
	ledgersAPI.HandleFunc("/{id}/close", cashLedgerHandler.Close).Methods("POST")
	ledgersAPI.HandleFunc("/{id}/remit", cashLedgerHandler.Remit).Methods("POST")
	ledgersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(cashLedgerHandler.ListByDate)).ServeHTTP).Methods("GET")

	// Protected API routes - Remittance confirmation (back office only)
	remittancesAPI := r.PathPrefix("/api/remittances").Subrouter()
	remittancesAPI.Use(authMiddleware.Authenticate)
	remittancesAPI.HandleFunc("/pending", authMiddleware.RequireAdmin(http.HandlerFunc(cashLedgerHandler.ListPendingRemittances)).ServeHTTP).Methods("GET")
	remittancesAPI.HandleFunc("/{id}/confirm", authMiddleware.RequireAdmin(http.HandlerFunc(cashLedgerHandler.Confirm)).ServeHTTP).Methods("POST")

	// Protected API routes - Credit alerts (back office only)
	alertsAPI := r.PathPrefix("/api/credit-alerts").Subrouter()
	alertsAPI.Use(authMiddleware.Authenticate)
	alertsAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(creditAlertHandler.ListAlerts)).ServeHTTP).Methods("GET")
	alertsAPI.HandleFunc("/{id}/ack", authMiddleware.RequireAdmin(http.HandlerFunc(creditAlertHandler.Acknowledge)).ServeHTTP).Methods("POST")

	// Protected API routes - Offline sync replay
	syncAPI := r.PathPrefix("/api/sync").Subrouter()
	syncAPI.Use(authMiddleware.Authenticate)
	syncAPI.HandleFunc("/events", syncHandler.ReplayBatch).Methods("POST")

	return r
}
