package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// microserviceBackend 將原始圖片以 multipart 轉送給自架 YOLO 服務
type microserviceBackend struct {
	client  *resty.Client
	url     string
	timeout time.Duration
}

func newMicroserviceBackend(serviceURL string, timeout time.Duration) *microserviceBackend {
	client := resty.New().
		SetHeader("Cache-Control", "no-store")

	return &microserviceBackend{
		client:  client,
		url:     serviceURL,
		timeout: timeout,
	}
}

func (b *microserviceBackend) Name() string { return BackendMicroservice }

type microserviceResponse struct {
	Ingredients json.RawMessage `json:"ingredients"`
	Labels      json.RawMessage `json:"labels"`
	Quantities  json.RawMessage `json:"quantities"`
}

func (b *microserviceBackend) Detect(ctx context.Context, data []byte, filename string) (*Result, error) {
	if filename == "" {
		filename = "image.jpg"
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.client.R().
		SetContext(ctx).
		SetFileReader("image", filename, bytes.NewReader(data)).
		Post(b.url)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, ErrDetectionTimeout.Wrap(err, "")
		}
		return nil, ErrDetectionFailed.Wrap(err, "")
	}
	if !resp.IsSuccess() {
		body := resp.String()
		return nil, ErrDetectionUpstream.Wrap(&UpstreamError{StatusCode: resp.StatusCode(), Body: body}, body)
	}

	var parsed microserviceResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, ErrDetectionUpstream.Wrap(fmt.Errorf("failed to parse detection response: %w", err), resp.String())
	}

	// ingredients 不是字串陣列時改用 labels
	ingredients, ok := stringList(parsed.Ingredients)
	if !ok {
		ingredients, _ = stringList(parsed.Labels)
	}
	if ingredients == nil {
		ingredients = []string{}
	}

	// quantities 為選填，格式不符時視為空
	quantities := map[string]int{}
	if len(parsed.Quantities) > 0 {
		var q map[string]int
		if err := json.Unmarshal(parsed.Quantities, &q); err == nil && q != nil {
			quantities = q
		}
	}

	return &Result{
		Ingredients: ingredients,
		Quantities:  quantities,
		Backend:     BackendMicroservice,
	}, nil
}

func stringList(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil || list == nil {
		return nil, false
	}
	return list, true
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsLoopbackURL 判斷 URL 是否指向本機位址
func IsLoopbackURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
