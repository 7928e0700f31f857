package api

import (
	"context"
	"net/http"
	"time"

	"pantry-pal/internal/api/handlers/detect"
	"pantry-pal/internal/api/handlers/health"
	recipeHandler "pantry-pal/internal/api/handlers/recipe"
	sessionHandler "pantry-pal/internal/api/handlers/session"
	"pantry-pal/internal/api/middleware"
	coreDetect "pantry-pal/internal/core/detect"
	recipeService "pantry-pal/internal/core/recipe"
	"pantry-pal/internal/core/session"
	"pantry-pal/internal/infrastructure/config"
	"pantry-pal/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrRequestTimeout 整個請求超過伺服器的處理上限
var ErrRequestTimeout = common.NewError("REQUEST_TIMEOUT", "Request timeout", http.StatusGatewayTimeout, nil)

// Services 路由使用的服務
type Services struct {
	Detector *coreDetect.Gateway
	Recipes  *recipeService.Service
	Sessions *session.Service
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc Services) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(requestTimeout(cfg.Server.WriteTimeout))

	// 健康檢查路由
	var pinger health.Pinger
	if svc.Sessions != nil {
		pinger = svc.Sessions
	}
	healthHandler := health.NewHandler(cfg, health.ServiceStatus{
		DetectionBackend:    svc.Detector.Backend(),
		GenerationAvailable: svc.Recipes.Configured(),
		SessionBackend:      cfg.Session.Backend,
	}, pinger)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	{
		detectHandler := detect.NewHandler(svc.Detector, svc.Sessions, cfg.Image.MaxSizeBytes)
		api.POST("/detect", detectHandler.HandleDetect)

		recipes := recipeHandler.NewHandler(svc.Recipes, svc.Sessions)
		dedup := middleware.NewDeduplicator(cfg.DedupWindow)
		api.POST("/recipes", dedup.Middleware(), recipes.HandleGenerate)
		api.POST("/recipes/rank", recipes.HandleRank)

		if svc.Sessions != nil {
			sessionHandler.NewHandler(svc.Sessions).Register(api)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("detection_backend", svc.Detector.Backend()),
		zap.Bool("generation_available", svc.Recipes.Configured()),
		zap.Bool("sessions_enabled", svc.Sessions != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || lo.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

// requestTimeout 為每個請求設定上限，處理器尚未回應時補上 504
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, ErrRequestTimeout.Wrap(nil, timeout.String()).ToResponse())
		}
	}
}
