package detect

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pantry-pal/internal/core/ai/image"
	"pantry-pal/internal/core/ingredient"
	"pantry-pal/internal/infrastructure/config"
	"pantry-pal/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// roboflowBackend 呼叫 Roboflow 託管模型。
// 任何失敗都退回固定清單，不會把錯誤交給呼叫端。
type roboflowBackend struct {
	client     *resty.Client
	processor  *image.Processor
	model      string
	apiKey     string
	confidence int
	timeout    time.Duration
}

func newRoboflowBackend(cfg config.RoboflowConfig, processor *image.Processor) *roboflowBackend {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Endpoint, "/")).
		SetHeader("Content-Type", "application/x-www-form-urlencoded")

	return &roboflowBackend{
		client:     client,
		processor:  processor,
		model:      strings.Trim(strings.TrimSpace(cfg.Model), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		confidence: cfg.Confidence,
		timeout:    cfg.Timeout,
	}
}

func (b *roboflowBackend) Name() string { return BackendRoboflow }

func (b *roboflowBackend) Detect(ctx context.Context, data []byte, _ string) (*Result, error) {
	result, err := b.detect(ctx, data)
	if err != nil {
		common.LogWarn("Roboflow detection failed, using fallback ingredients",
			zap.String("model", b.model),
			zap.Error(err),
		)
		return fallbackResult(BackendFallback), nil
	}
	return result, nil
}

// roboflowResponse 只取需要的欄位；predictions 逐筆解析以略過格式不符的項目
type roboflowResponse struct {
	Predictions []json.RawMessage `json:"predictions"`
}

type roboflowPrediction struct {
	Class     string `json:"class"`
	ClassName string `json:"class_name"`
	Label     string `json:"label"`
}

func (p roboflowPrediction) label() string {
	for _, v := range []string{p.Class, p.ClassName, p.Label} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func (b *roboflowBackend) detect(ctx context.Context, data []byte) (*Result, error) {
	resized, _, err := b.processor.Downscale(data)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_key":    b.apiKey,
			"confidence": strconv.Itoa(b.confidence),
		}).
		SetBody(base64.StdEncoding.EncodeToString(resized)).
		Post("/" + b.model)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Roboflow: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &UpstreamError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var parsed roboflowResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse Roboflow response: %w", err)
	}

	labels := make([]string, 0, len(parsed.Predictions))
	for _, raw := range parsed.Predictions {
		var p roboflowPrediction
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		if l := p.label(); l != "" {
			labels = append(labels, l)
		}
	}

	ingredients, quantities := CountLabels(labels)
	return &Result{
		Ingredients: ingredients,
		Quantities:  quantities,
		Backend:     BackendRoboflow,
	}, nil
}

// CountLabels 依正規化名稱計數，保留每個名稱第一次出現的原始標籤與順序
func CountLabels(labels []string) ([]string, map[string]int) {
	ingredients := make([]string, 0, len(labels))
	quantities := make(map[string]int, len(labels))
	for _, label := range labels {
		key := ingredient.Normalize(label)
		if key == "" {
			continue
		}
		if _, seen := quantities[key]; !seen {
			ingredients = append(ingredients, label)
		}
		quantities[key]++
	}
	return ingredients, quantities
}
