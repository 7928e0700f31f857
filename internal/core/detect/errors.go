package detect

import (
	"fmt"
	"net/http"

	"pantry-pal/internal/pkg/common"
)

var (
	// ErrDetectionTimeout 偵測服務逾時
	ErrDetectionTimeout = common.NewError("DETECTION_TIMEOUT",
		"Detection timed out. The service took too long to respond.", http.StatusGatewayTimeout, nil)

	// ErrDetectionUpstream 偵測服務回傳非 2xx
	ErrDetectionUpstream = common.NewError("DETECTION_UPSTREAM_ERROR",
		"Detection service error", http.StatusBadGateway, nil)

	// ErrDetectionFailed 其他非預期錯誤
	ErrDetectionFailed = common.NewError("DETECTION_FAILED",
		"Detection failed", http.StatusInternalServerError, nil)
)

// UpstreamError 上游偵測服務的錯誤回應
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("detection service returned status %d", e.StatusCode)
}
