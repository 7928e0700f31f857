// Package handlers 提供各 HTTP 處理器共用的請求綁定與錯誤回應
package handlers

import (
	"errors"

	"pantry-pal/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 處理器寫入 gin context、由存取日誌讀出的鍵
const (
	ContextKeyBackend   = "pantry.backend"
	ContextKeySessionID = "pantry.session_id"
	ContextKeyErrorCode = "pantry.error_code"
)

// RespondError 將錯誤轉為 {error, code, details?} 並中止請求
func RespondError(c *gin.Context, err error) {
	ce := common.AsCustomError(err)
	if ce.Status >= 500 {
		common.LogError("Request failed",
			zap.String("request_id", requestid.Get(c)),
			zap.String("code", ce.Code),
			zap.Error(err),
		)
	}
	c.Set(ContextKeyErrorCode, ce.Code)
	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, ce.ToResponse())
}

// BindJSON 綁定並驗證 JSON 請求體，失敗時直接回應 400
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		RespondError(c, common.ErrInvalidRequest.Wrap(err, err.Error()))
		return false
	}
	return true
}

// Fallback 非 CustomError 的錯誤改用指定的預設錯誤
func Fallback(err error, def *common.CustomError) error {
	var ce *common.CustomError
	if errors.As(err, &ce) {
		return err
	}
	return def.Wrap(err, "")
}
