package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"distro-backend/internal/models"
	"distro-backend/internal/repositories"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Server is the admin-facing monitoring endpoint: live credit alerts
// over websocket, plus system and database health for the dashboard.
// It runs on its own port, away from the agent API.
type Server struct {
	db         *pgxpool.Pool
	alertRepo  *repositories.CreditAlertRepository
	port       int
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan models.CreditAlert
}

type DashboardStats struct {
	DatabaseStatus    string  `json:"database_status"`
	ActiveConnections int     `json:"active_connections"`
	ResponseTime      int64   `json:"response_time_ms"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	DiskPercent       float64 `json:"disk_percent"`
	SettlementsToday  int     `json:"settlements_today"`
	CollectedToday    float64 `json:"collected_today"`
	OpenLedgers       int     `json:"open_ledgers"`
	UnackedAlerts     int     `json:"unacked_alerts"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewServer(db *pgxpool.Pool, alertRepo *repositories.CreditAlertRepository, port int) *Server {
	return &Server{
		db:        db,
		alertRepo: alertRepo,
		port:      port,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan models.CreditAlert, 64),
	}
}

// NotifyCreditAlert implements services.AlertSink. Non-blocking: a slow
// dashboard must not slow down settlements.
func (ms *Server) NotifyCreditAlert(alert models.CreditAlert) {
	select {
	case ms.broadcast <- alert:
	default:
		log.Printf("[Monitoring] alert broadcast buffer full, dropping alert for customer %d", alert.CustomerID)
	}
}

func (ms *Server) Start() {
	r := mux.NewRouter()

	r.HandleFunc("/api/stats", ms.getStats).Methods("GET")
	r.HandleFunc("/api/alerts", ms.getAlerts).Methods("GET")
	r.HandleFunc("/ws", ms.handleWebSocket)

	go ms.handleBroadcast()

	addr := fmt.Sprintf(":%d", ms.port)
	log.Printf("Monitoring server running on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func (ms *Server) getStats(w http.ResponseWriter, r *http.Request) {
	stats := ms.collectStats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (ms *Server) getAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := ms.alertRepo.ListUnacknowledged(r.Context(), 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alerts)
}

func (ms *Server) collectStats() DashboardStats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := ms.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	dbStatus := "healthy"
	if err != nil {
		dbStatus = "unhealthy"
	}

	stats := DashboardStats{
		DatabaseStatus: dbStatus,
		ResponseTime:   responseTime,
	}

	ms.db.QueryRow(ctx, "SELECT count(*) FROM pg_stat_activity").Scan(&stats.ActiveConnections)
	ms.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(amount), 0)
		 FROM payment_records WHERE created_at::date = CURRENT_DATE`).
		Scan(&stats.SettlementsToday, &stats.CollectedToday)
	ms.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM daily_cash_ledgers WHERE status = 'open'`).
		Scan(&stats.OpenLedgers)
	ms.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM credit_alerts WHERE NOT acknowledged`).
		Scan(&stats.UnackedAlerts)

	if cpuPercents, err := cpu.Percent(0, false); err == nil && len(cpuPercents) > 0 {
		stats.CPUPercent = cpuPercents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
	}
	if du, err := disk.Usage("/"); err == nil {
		stats.DiskPercent = du.UsedPercent
	}

	return stats
}

func (ms *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Monitoring] websocket upgrade failed: %v", err)
		return
	}

	ms.clientsMux.Lock()
	ms.clients[conn] = true
	ms.clientsMux.Unlock()

	// Reader loop only to detect disconnect
	go func() {
		defer func() {
			ms.clientsMux.Lock()
			delete(ms.clients, conn)
			ms.clientsMux.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (ms *Server) handleBroadcast() {
	for alert := range ms.broadcast {
		payload, err := json.Marshal(alert)
		if err != nil {
			continue
		}

		ms.clientsMux.Lock()
		for conn := range ms.clients {
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				conn.Close()
				delete(ms.clients, conn)
			}
		}
		ms.clientsMux.Unlock()
	}
}
