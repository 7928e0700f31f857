package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pantry-pal/internal/api"
	"pantry-pal/internal/core/ai/gemini"
	"pantry-pal/internal/core/ai/image"
	"pantry-pal/internal/core/ai/provider"
	"pantry-pal/internal/core/detect"
	"pantry-pal/internal/core/recipe"
	"pantry-pal/internal/core/session"
	"pantry-pal/internal/infrastructure/config"
	"pantry-pal/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("gemini_api_key", config.MaskAPIKey(cfg.Gemini.APIKey)),
		zap.String("gemini_model", cfg.Gemini.Model),
		zap.Bool("mock_detection", cfg.Detection.MockMode),
		zap.String("session_backend", cfg.Session.Backend),
	)

	ctx := context.Background()

	// session 儲存後端
	store, err := session.NewStore(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize session store", zap.Error(err))
	}
	defer store.Close()

	// 沒有金鑰時不建立提供者，生成請求會回傳 500
	var gen provider.Provider
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.Gemini)
		if err != nil {
			common.LogFatal("Failed to initialize Gemini client", zap.Error(err))
		}
		defer client.Close()
		gen = client
	} else {
		common.LogWarn("GEMINI_API_KEY not set, recipe generation is disabled")
	}

	processor := image.NewProcessor(cfg.Image.MaxEdge, cfg.Image.JPEGQuality)
	router := api.SetupRouter(cfg, api.Services{
		Detector: detect.NewGateway(cfg.Detection, processor),
		Recipes:  recipe.NewService(gen, cfg.Gemini),
		Sessions: session.NewService(store),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("addr", srv.Addr),
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
