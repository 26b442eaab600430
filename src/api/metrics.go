package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	game "coin-arena/src"
)

// HealthStatus represents the overall health of the arena.
type HealthStatus string

const (
	HealthHealthy     HealthStatus = "healthy"
	HealthWarning     HealthStatus = "warning"
	HealthDegraded    HealthStatus = "degraded"
	HealthMaintenance HealthStatus = "maintenance"
)

// WebSocketStatus represents the state of the websocket endpoint.
type WebSocketStatus string

const (
	WebSocketRunning  WebSocketStatus = "running"
	WebSocketStopping WebSocketStatus = "stopping"
)

// WebSocketServerMetrics holds websocket endpoint status.
type WebSocketServerMetrics struct {
	Status            WebSocketStatus `json:"status"`
	ActiveConnections int             `json:"active_connections"`
	ControllerPresent bool            `json:"controller_present"`
	Spectators        int             `json:"spectators"`
}

// DeliveryMetrics summarizes the delayed outbound path.
type DeliveryMetrics struct {
	Delivered   uint64  `json:"messages_delivered"`
	Dropped     uint64  `json:"messages_dropped"`
	DropRate    float64 `json:"drop_rate"`
	Malformed   uint64  `json:"malformed_inbound"`
	LatencyMs   int64   `json:"latency_ms"`
	CurrentLoad string  `json:"current_load"` // "low", "medium", "high", "critical"
}

// MetricsResponse is the complete metrics document.
type MetricsResponse struct {
	Timestamp         time.Time              `json:"timestamp"`
	Health            HealthStatus           `json:"health"`
	HealthDescription string                 `json:"health_description"`
	Engine            game.Stats             `json:"engine"`
	WebSocket         WebSocketServerMetrics `json:"websocket"`
	Delivery          DeliveryMetrics        `json:"delivery"`
	ServerUptime      int64                  `json:"server_uptime_sec"`
}

// MetricsHandler reports engine counters and a derived health verdict.
type MetricsHandler struct {
	engine Engine

	mu       sync.RWMutex
	wsStatus WebSocketStatus

	// Drop-rate thresholds for the health verdict.
	warningDropRate  float64
	degradedDropRate float64
}

func NewMetricsHandler(engine Engine) *MetricsHandler {
	return &MetricsHandler{
		engine:           engine,
		wsStatus:         WebSocketRunning,
		warningDropRate:  0.05,
		degradedDropRate: 0.25,
	}
}

// Routes registers metrics routes.
func (h *MetricsHandler) Routes(r chi.Router) {
	r.Get("/metrics", h.GetMetrics)
	r.Get("/metrics/health", h.GetHealth)
}

// GetMetrics returns the complete metrics document.
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.collectMetrics())
}

// GetHealth returns only the health verdict.
func (h *MetricsHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	m := h.collectMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp":   m.Timestamp,
		"health":      m.Health,
		"description": m.HealthDescription,
	})
}

// SetWebSocketStatus is called on shutdown so probes see maintenance.
func (h *MetricsHandler) SetWebSocketStatus(status WebSocketStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wsStatus = status
}

func (h *MetricsHandler) collectMetrics() *MetricsResponse {
	h.mu.RLock()
	status := h.wsStatus
	h.mu.RUnlock()

	stats := h.engine.Stats()
	ws := WebSocketServerMetrics{
		Status:            status,
		ActiveConnections: stats.Sessions,
		ControllerPresent: stats.ControllerConnected,
		Spectators:        stats.Spectators,
	}
	delivery := calculateDelivery(stats)
	health, desc := h.determineHealth(ws, delivery)

	return &MetricsResponse{
		Timestamp:         time.Now(),
		Health:            health,
		HealthDescription: desc,
		Engine:            stats,
		WebSocket:         ws,
		Delivery:          delivery,
		ServerUptime:      stats.UptimeSec,
	}
}

func calculateDelivery(stats game.Stats) DeliveryMetrics {
	d := DeliveryMetrics{
		Delivered: stats.Delivered,
		Dropped:   stats.Dropped,
		Malformed: stats.Malformed,
		LatencyMs: stats.LatencyMs,
	}
	if total := stats.Delivered + stats.Dropped; total > 0 {
		d.DropRate = float64(stats.Dropped) / float64(total)
	}
	switch {
	case d.DropRate < 0.01:
		d.CurrentLoad = "low"
	case d.DropRate < 0.05:
		d.CurrentLoad = "medium"
	case d.DropRate < 0.25:
		d.CurrentLoad = "high"
	default:
		d.CurrentLoad = "critical"
	}
	return d
}

func (h *MetricsHandler) determineHealth(ws WebSocketServerMetrics, d DeliveryMetrics) (HealthStatus, string) {
	if ws.Status == WebSocketStopping {
		return HealthMaintenance, "Server is performing graceful shutdown - no new connections accepted"
	}
	if d.DropRate >= h.degradedDropRate {
		return HealthDegraded, fmt.Sprintf("%.0f%% of outbound messages dropped - clients are not keeping up", d.DropRate*100)
	}
	if d.DropRate >= h.warningDropRate {
		return HealthWarning, fmt.Sprintf("%.1f%% of outbound messages dropped - monitor slow clients", d.DropRate*100)
	}
	if ws.ActiveConnections > 0 {
		connStr := "connection"
		if ws.ActiveConnections > 1 {
			connStr = "connections"
		}
		return HealthHealthy, fmt.Sprintf("All systems operational - %d active %s", ws.ActiveConnections, connStr)
	}
	return HealthHealthy, "Server ready and operational - awaiting connections"
}
