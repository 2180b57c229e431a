package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"distro-backend/internal/auth"
	"distro-backend/internal/config"
	"distro-backend/internal/database"
	"distro-backend/internal/db"
	"distro-backend/internal/events"
	"distro-backend/internal/handlers"
	"distro-backend/internal/health"
	h "distro-backend/internal/http"
	"distro-backend/internal/middleware"
	"distro-backend/internal/monitoring"
	"distro-backend/internal/repositories"
	"distro-backend/internal/services"
	"distro-backend/internal/storage"
	"distro-backend/internal/syncreplay"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	migrator := database.NewMigrator(pool)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	// Redis is optional; the publisher degrades to log-only without it.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("[Redis] Unreachable, continuing without events: %v", err)
			redisClient = nil
		}
		cancel()
	}
	publisher := events.NewPublisher(redisClient)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	orderRepo := repositories.NewOrderRepository(pool)
	deliveryRepo := repositories.NewDeliveryRepository(pool)
	paymentRecordRepo := repositories.NewPaymentRecordRepository(pool)
	cashLedgerRepo := repositories.NewCashLedgerRepository(pool)
	remittanceRepo := repositories.NewRemittanceRepository(pool)
	creditAlertRepo := repositories.NewCreditAlertRepository(pool)

	// Monitoring dashboard (stats, credit alert broadcast over websocket)
	monitor := monitoring.NewServer(pool, creditAlertRepo, cfg.Server.MonitoringPort)
	go monitor.Start()

	// Services
	settlementService := services.NewSettlementService(
		pool,
		customerRepo,
		orderRepo,
		deliveryRepo,
		paymentRecordRepo,
		cashLedgerRepo,
		creditAlertRepo,
		publisher,
	)
	settlementService.AlertSink = monitor
	cashLedgerService := services.NewCashLedgerService(pool, cashLedgerRepo, remittanceRepo)

	// Proof-of-delivery object storage (optional)
	proofStore, err := storage.NewProofStore(context.Background(), cfg)
	if err != nil {
		log.Printf("[Storage] Disabled: %v", err)
		proofStore = nil
	}

	// Auth
	jwtManager := auth.NewJWTManager(cfg)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)

	// Handlers
	settlementHandler := handlers.NewSettlementHandler(settlementService)
	cashLedgerHandler := handlers.NewCashLedgerHandler(cashLedgerService)
	customerHandler := handlers.NewCustomerHandler(customerRepo, orderRepo)
	deliveryHandler := handlers.NewDeliveryHandler(deliveryRepo, proofStore)
	paymentRecordHandler := handlers.NewPaymentRecordHandler(paymentRecordRepo)
	creditAlertHandler := handlers.NewCreditAlertHandler(creditAlertRepo)
	syncHandler := handlers.NewSyncHandler(syncreplay.NewReplayer(settlementService))
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool))

	router := h.NewRouter(
		settlementHandler,
		cashLedgerHandler,
		customerHandler,
		deliveryHandler,
		paymentRecordHandler,
		creditAlertHandler,
		syncHandler,
		healthHandler,
		authMiddleware,
	)

	corsMiddleware := middleware.NewCORS(cfg)
	handler := corsMiddleware(router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
