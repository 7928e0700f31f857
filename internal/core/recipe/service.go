package recipe

import (
	"context"
	"errors"
	"strings"
	"time"

	"pantry-pal/internal/core/ai/provider"
	"pantry-pal/internal/infrastructure/config"
	"pantry-pal/internal/pkg/common"

	"go.uber.org/zap"
)

// MaxIngredients 單次請求最多送出的食材數
const MaxIngredients = 30

// Service 食譜生成服務
type Service struct {
	provider    provider.Provider
	maxTokens   int
	temperature float64
	timeout     time.Duration
	count       int
}

// NewService 創建食譜生成服務；p 為 nil 表示未設定憑證
func NewService(p provider.Provider, cfg config.GeminiConfig) *Service {
	s := &Service{
		provider:    p,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		count:       cfg.RecipeCount,
	}
	if s.maxTokens <= 0 {
		s.maxTokens = 4096
	}
	if s.timeout <= 0 {
		s.timeout = 20 * time.Second
	}
	if s.count <= 0 {
		s.count = 4
	}
	return s
}

// Configured 是否有可用的生成提供者
func (s *Service) Configured() bool {
	return s.provider != nil
}

// CleanIngredients 去除前後空白與空字串，最多保留 MaxIngredients 筆
func CleanIngredients(ingredients []string) []string {
	out := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if t := strings.TrimSpace(ing); t != "" {
			out = append(out, t)
		}
		if len(out) == MaxIngredients {
			break
		}
	}
	return out
}

// Generate 依食材與篩選條件生成食譜
func (s *Service) Generate(ctx context.Context, ingredients []string, filters common.Filters) ([]common.Recipe, error) {
	if s.provider == nil {
		return nil, ErrMissingCredential
	}

	cleaned := CleanIngredients(ingredients)
	if len(cleaned) == 0 {
		return nil, ErrNoIngredients
	}

	prompt := BuildPrompt(cleaned, filters, s.count)
	start := time.Now()

	resp, err := s.call(ctx, &provider.Request{
		Prompt:      prompt,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		JSON:        true,
	})
	if err != nil {
		mapped := mapError(err)
		common.LogError("Recipe generation failed",
			zap.String("model", s.provider.GetModel()),
			zap.Int("status", mapped.Status),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, mapped
	}

	parsed, err := parseModelOutput(resp.Content)
	if err != nil {
		common.LogError("Invalid recipe response from model",
			zap.String("model", s.provider.GetModel()),
			zap.Int("response_length", len(resp.Content)),
			zap.Error(err),
		)
		return nil, ErrGenerationFailed.Wrap(err, "")
	}

	recipes := make([]common.Recipe, 0, len(parsed))
	for i, m := range parsed {
		recipes = append(recipes, m.toRecipe(i+1, cleaned))
	}

	common.LogInfo("Recipes generated",
		zap.String("model", s.provider.GetModel()),
		zap.Int("ingredients", len(cleaned)),
		zap.Int("recipes", len(recipes)),
		zap.Duration("duration", time.Since(start)),
	)
	return recipes, nil
}

type callResult struct {
	resp *provider.Response
	err  error
}

// call 與計時器競賽；計時器先到時不等待提供者返回
func (s *Service) call(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ch := make(chan callResult, 1)
	go func() {
		resp, err := s.provider.Generate(ctx, req)
		ch <- callResult{resp: resp, err: err}
	}()

	select {
	case r := <-ch:
		if r.err == nil && r.resp == nil {
			return nil, provider.ErrEmptyResponse
		}
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// mapError 將提供者錯誤轉成對使用者的狀態碼與訊息
func mapError(err error) *common.CustomError {
	switch {
	case provider.IsRateLimited(err):
		return ErrRateLimited.Wrap(err, "")
	case errors.Is(err, context.DeadlineExceeded),
		strings.Contains(strings.ToLower(err.Error()), "timed out"):
		return ErrGenerationTimeout.Wrap(err, "")
	default:
		return ErrGenerationFailed.Wrap(err, "")
	}
}
