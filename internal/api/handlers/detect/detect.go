package detect

import (
	"errors"
	"io"
	"net/http"

	"pantry-pal/internal/api/handlers"
	"pantry-pal/internal/core/ai/image"
	coreDetect "pantry-pal/internal/core/detect"
	"pantry-pal/internal/core/ingredient"
	"pantry-pal/internal/core/session"
	"pantry-pal/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 偵測結果
type Response struct {
	Ingredients []string            `json:"ingredients"`
	Quantities  map[string]int      `json:"quantities"`
	Items       []common.Ingredient `json:"items"`
	Backend     string              `json:"backend"`
	SessionID   string              `json:"session_id,omitempty"`
}

// Handler 食材偵測處理器
type Handler struct {
	gateway  *coreDetect.Gateway
	sessions *session.Service
	maxBytes int64
}

// NewHandler 創建偵測處理器；sessions 可為 nil
func NewHandler(gateway *coreDetect.Gateway, sessions *session.Service, maxBytes int64) *Handler {
	return &Handler{gateway: gateway, sessions: sessions, maxBytes: maxBytes}
}

// HandleDetect 接收 multipart 的 image 欄位並回傳偵測到的食材
func (h *Handler) HandleDetect(c *gin.Context) {
	// 偵測結果不應被任何一層快取
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
	c.Header("Pragma", "no-cache")

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(c, common.ErrImageTooLarge.Wrap(err, ""))
			return
		}
		handlers.RespondError(c, common.ErrInvalidImage.Wrap(err, "image field is required"))
		return
	}
	defer file.Close()

	if h.maxBytes > 0 && header.Size > h.maxBytes {
		handlers.RespondError(c, common.ErrImageTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(c, common.ErrInvalidImage.Wrap(err, "failed to read image"))
		return
	}
	// 格式交給偵測後端判斷，無法解碼時由後端改回固定清單
	if len(data) == 0 {
		handlers.RespondError(c, common.ErrInvalidImage.Wrap(image.ErrEmptyImage, "image file is empty"))
		return
	}

	common.LogInfo("Detection request received",
		zap.String("request_id", requestid.Get(c)),
		zap.String("filename", header.Filename),
		zap.Int("size", len(data)),
	)

	result, err := h.gateway.Detect(c.Request.Context(), data, header.Filename)
	if err != nil {
		handlers.RespondError(c, handlers.Fallback(err, coreDetect.ErrDetectionFailed))
		return
	}

	c.Set(handlers.ContextKeyBackend, result.Backend)

	names := result.Ingredients
	if names == nil {
		names = []string{}
	}
	quantities := result.Quantities
	if quantities == nil {
		quantities = map[string]int{}
	}
	resp := Response{
		Ingredients: names,
		Quantities:  quantities,
		Items:       ingredient.ClassifyAll(names, quantities),
		Backend:     result.Backend,
	}

	if sid := c.PostForm("session_id"); sid != "" && h.sessions != nil {
		c.Set(handlers.ContextKeySessionID, sid)
		if _, err := h.sessions.SetDetection(c.Request.Context(), sid, header.Filename, names, quantities); err != nil {
			handlers.RespondError(c, err)
			return
		}
		resp.SessionID = sid
	}

	c.JSON(http.StatusOK, resp)
}
