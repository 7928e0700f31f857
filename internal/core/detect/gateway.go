package detect

import (
	"context"
	"strings"
	"time"

	"pantry-pal/internal/core/ai/image"
	"pantry-pal/internal/infrastructure/config"
	"pantry-pal/internal/pkg/common"

	"go.uber.org/zap"
)

// 偵測後端名稱
const (
	BackendMock         = "mock"
	BackendRoboflow     = "roboflow"
	BackendMicroservice = "microservice"
	BackendFallback     = "fallback"
)

// Result 偵測結果
type Result struct {
	Ingredients []string       `json:"ingredients"`
	Quantities  map[string]int `json:"quantities"`
	Backend     string         `json:"backend"`
}

// Backend 單一偵測後端
type Backend interface {
	Name() string
	Detect(ctx context.Context, data []byte, filename string) (*Result, error)
}

// Gateway 依設定選擇一個偵測後端並轉送請求
type Gateway struct {
	backend Backend
}

// NewGateway 依序套用：mock 模式、Roboflow、微服務、固定清單
func NewGateway(cfg config.DetectionConfig, processor *image.Processor) *Gateway {
	return &Gateway{backend: selectBackend(cfg, processor)}
}

// NewGatewayWithBackend 使用指定後端，供測試與 CLI 使用
func NewGatewayWithBackend(backend Backend) *Gateway {
	return &Gateway{backend: backend}
}

func selectBackend(cfg config.DetectionConfig, processor *image.Processor) Backend {
	if cfg.MockMode {
		return staticBackend{name: BackendMock}
	}
	if cfg.Roboflow.Enabled() {
		return newRoboflowBackend(cfg.Roboflow, processor)
	}
	if u := strings.TrimSpace(cfg.Microservice.URL); u != "" {
		if cfg.Serverless && IsLoopbackURL(u) {
			common.LogWarn("Detection service URL is loopback in a serverless deployment, using fallback ingredients",
				zap.String("url", u),
			)
			return staticBackend{name: BackendFallback}
		}
		return newMicroserviceBackend(u, cfg.Microservice.Timeout)
	}
	return staticBackend{name: BackendFallback}
}

// Backend 目前使用的後端名稱
func (g *Gateway) Backend() string {
	return g.backend.Name()
}

// Detect 偵測圖片中的食材
func (g *Gateway) Detect(ctx context.Context, data []byte, filename string) (*Result, error) {
	start := time.Now()
	result, err := g.backend.Detect(ctx, data, filename)
	if err != nil {
		common.LogError("Ingredient detection failed",
			zap.String("backend", g.backend.Name()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	common.LogInfo("Ingredient detection completed",
		zap.String("backend", result.Backend),
		zap.Int("items", len(result.Ingredients)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}
