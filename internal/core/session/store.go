// Package session 保存每個使用者 session 的狀態：偏好設定、食材工作清單、
// 購物清單與最近一次生成的食譜。資料以 JSON 存放在可替換的 Store 中。
package session

import (
	"context"
	"fmt"
	"net/http"

	"pantry-pal/internal/infrastructure/config"
	"pantry-pal/internal/pkg/common"
)

var (
	// ErrNotFound session 不存在或已過期
	ErrNotFound = common.NewError(common.ErrCodeNotFound, "Session not found", http.StatusNotFound, nil)
	// ErrConflict 同一 session 被同時修改
	ErrConflict = common.NewError(common.ErrCodeConflict, "Session was modified concurrently, please retry", http.StatusConflict, nil)

	// ErrItemExists 食材、常備品已存在
	ErrItemExists = common.NewError("ALREADY_EXISTS", "Item already exists", http.StatusConflict, nil)
	// ErrItemNotFound session 中找不到指定項目
	ErrItemNotFound = common.NewError("ITEM_NOT_FOUND", "Item not found", http.StatusNotFound, nil)
)

// UpdateFunc 讀取目前的值並回傳新值
type UpdateFunc func(current []byte) ([]byte, error)

// Store session 儲存後端
type Store interface {
	// Get 讀取值並延長存活時間
	Get(ctx context.Context, id string) ([]byte, error)
	// Set 寫入值
	Set(ctx context.Context, id string, data []byte) error
	// Delete 刪除值，不存在時不回傳錯誤
	Delete(ctx context.Context, id string) error
	// Update 原子地讀取、修改、寫回
	Update(ctx context.Context, id string, fn UpdateFunc) error
	// Ping 檢查後端是否可用
	Ping(ctx context.Context) error
	// Close 釋放資源
	Close() error
}

// NewStore 依設定建立儲存後端
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.Session.Backend {
	case "redis":
		return NewRedisStore(cfg.Redis, cfg.Session.TTL)
	case "memory", "":
		return NewMemoryStore(cfg.Session), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
