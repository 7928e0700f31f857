package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"pantry-pal/internal/infrastructure/config"
	"pantry-pal/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Services  *ServiceStatus         `json:"services,omitempty"`
}

// ServiceStatus 相依服務狀態
type ServiceStatus struct {
	DetectionBackend    string `json:"detection_backend"`
	GenerationAvailable bool   `json:"generation_available"`
	SessionBackend      string `json:"session_backend"`
}

// Pinger 可檢查連線的相依服務
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler 健康檢查處理器
type Handler struct {
	cfg      *config.Config
	status   ServiceStatus
	sessions Pinger
}

// NewHandler 創建健康檢查處理器；sessions 可為 nil
func NewHandler(cfg *config.Config, status ServiceStatus, sessions Pinger) *Handler {
	return &Handler{cfg: cfg, status: status, sessions: sessions}
}

// HealthCheck 回傳版本、執行狀態與相依服務設定
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status := h.status
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Services: &status,
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck session 儲存後端可用時才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.sessions != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.sessions.Ping(ctx); err != nil {
			common.LogWarn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  "session store unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
