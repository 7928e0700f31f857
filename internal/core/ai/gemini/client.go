package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pantry-pal/internal/core/ai/provider"
	"pantry-pal/internal/infrastructure/config"
	"pantry-pal/internal/pkg/common"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrMissingAPIKey 未設定 Gemini API Key
var ErrMissingAPIKey = errors.New("gemini: missing api key")

// Client Gemini API 客戶端
type Client struct {
	genAI *genai.Client
	model string
}

// Option 客戶端選項
type Option func(*genai.ClientConfig)

// WithBaseURL 覆寫 API 位址，測試時指向本地假伺服器
func WithBaseURL(baseURL string) Option {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = baseURL
	}
}

// NewClient 創建新的 Gemini 客戶端
func NewClient(ctx context.Context, cfg config.GeminiConfig, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cc)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	common.LogInfo("Gemini client initialized",
		zap.String("model", cfg.Model),
		zap.String("api_key", config.MaskAPIKey(apiKey)),
	)

	return &Client{
		genAI: client,
		model: cfg.Model,
	}, nil
}

// Generate 呼叫 GenerateContent 並取出文字內容
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	start := time.Now()

	gcc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		gcc.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSON {
		gcc.ResponseMIMEType = "application/json"
	}
	if req.SystemPrompt != "" {
		gcc.SystemInstruction = &genai.Content{
			Role:  "model",
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	res, err := c.genAI.Models.GenerateContent(ctx, c.model, []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: req.Prompt}},
		},
	}, gcc)
	common.LogAICall(c.model, time.Since(start), err)
	if err != nil {
		if provider.IsRateLimited(err) {
			return nil, fmt.Errorf("gemini: generate content: %w: %v", provider.ErrRateLimited, err)
		}
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	text := responseText(res)
	if text == "" {
		return nil, provider.ErrEmptyResponse
	}

	out := &provider.Response{Content: text}
	if res.UsageMetadata != nil {
		out.Usage.PromptTokens = int(res.UsageMetadata.PromptTokenCount)
		out.Usage.CompletionTokens = int(res.UsageMetadata.CandidatesTokenCount)
		out.Usage.TotalTokens = int(res.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

// responseText 串接第一個候選的所有文字片段
func responseText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// GetModel 獲取當前使用的模型名稱
func (c *Client) GetModel() string {
	return c.model
}

// Close genai 客戶端沒有需要釋放的連線
func (c *Client) Close() error {
	return nil
}
