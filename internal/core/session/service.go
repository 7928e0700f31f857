package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pantry-pal/internal/core/grocery"
	"pantry-pal/internal/core/ingredient"
	"pantry-pal/internal/core/pantry"
	"pantry-pal/internal/pkg/common"

	"go.uber.org/zap"
)

// Session 單一使用者的暫存狀態
type Session struct {
	ID          string               `json:"id"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	ImageName   string               `json:"imageName,omitempty"`
	Preferences common.Filters       `json:"preferences"`
	Pantry      pantry.Set           `json:"pantry"`
	Groceries   []common.GroceryItem `json:"groceries"`
	Recipes     []common.Recipe      `json:"recipes"`
}

// Ingredients 比對食譜時使用的食材名稱
func (s *Session) Ingredients() []string {
	return s.Pantry.Names()
}

// RankedRecipes 以目前的食材與偏好重新計分、篩選並排序上次生成的食譜
func (s *Session) RankedRecipes() []common.Recipe {
	return ingredient.FilterAndRank(s.Recipes, s.Ingredients(), s.Preferences)
}

// Service session 服務
type Service struct {
	store Store
	now   func() time.Time
}

// NewService 創建 session 服務
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Ping 檢查儲存後端
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Create 建立只含預設偏好與常備品的新 session
func (s *Service) Create(ctx context.Context) (*Session, error) {
	now := s.now().UTC()
	sess := &Session{
		ID:          common.GenerateUUID(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Preferences: common.DefaultFilters(),
		Pantry:      *pantry.New(),
		Groceries:   []common.GroceryItem{},
		Recipes:     []common.Recipe{},
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.store.Set(ctx, sess.ID, data); err != nil {
		return nil, err
	}

	common.LogInfo("Session created", zap.String("session_id", sess.ID))
	return sess, nil
}

// Get 讀取 session
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	if !common.IsUUID(id) {
		return nil, ErrNotFound
	}
	data, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// Delete 刪除 session
func (s *Service) Delete(ctx context.Context, id string) error {
	if !common.IsUUID(id) {
		return ErrNotFound
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Update 讀取、修改、寫回 session；fn 回傳錯誤時不寫入
func (s *Service) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	if !common.IsUUID(id) {
		return nil, ErrNotFound
	}

	var updated *Session
	err := s.store.Update(ctx, id, func(current []byte) ([]byte, error) {
		sess, err := decode(current)
		if err != nil {
			return nil, err
		}
		if err := fn(sess); err != nil {
			return nil, err
		}
		sess.UpdatedAt = s.now().UTC()
		updated = sess
		return json.Marshal(sess)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func decode(data []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if sess.Groceries == nil {
		sess.Groceries = []common.GroceryItem{}
	}
	if sess.Recipes == nil {
		sess.Recipes = []common.Recipe{}
	}
	if sess.Pantry.Detected == nil {
		sess.Pantry.Detected = []common.Ingredient{}
	}
	if sess.Pantry.Staples == nil {
		sess.Pantry.Staples = []common.Ingredient{}
	}
	return &sess, nil
}

// SetDetection 以偵測結果取代食材清單
func (s *Service) SetDetection(ctx context.Context, id, imageName string, names []string, quantities map[string]int) (*Session, error) {
	return s.Update(ctx, id, func(sess *Session) error {
		sess.ImageName = imageName
		sess.Pantry.Replace(names, quantities)
		return nil
	})
}

// SetPreferences 更新偏好設定，空白欄位視為 "any"
func (s *Service) SetPreferences(ctx context.Context, id string, filters common.Filters) (*Session, error) {
	return s.Update(ctx, id, func(sess *Session) error {
		sess.Preferences = filters.WithDefaults()
		return nil
	})
}

// SetRecipes 保存最近一次生成的食譜
func (s *Service) SetRecipes(ctx context.Context, id string, recipes []common.Recipe) (*Session, error) {
	return s.Update(ctx, id, func(sess *Session) error {
		sess.Recipes = recipes
		return nil
	})
}

// AddIngredient 手動新增食材，未指定分類時自動分類
func (s *Service) AddIngredient(ctx context.Context, id string, ing common.Ingredient) (*Session, error) {
	if ing.Category == "" && !ing.UseSoon {
		ing = classifyKeepQuantity(ing)
	}
	return s.Update(ctx, id, func(sess *Session) error {
		if !sess.Pantry.Add(ing) {
			return ErrItemExists.Wrap(nil, "ingredient already exists or name is empty")
		}
		return nil
	})
}

// EditIngredient 修改食材，新名稱與其他食材衝突時以這次編輯為準
func (s *Service) EditIngredient(ctx context.Context, id, oldName string, ing common.Ingredient) (*Session, error) {
	return s.Update(ctx, id, func(sess *Session) error {
		if !sess.Pantry.Edit(oldName, ing) {
			return ErrItemNotFound.Wrap(nil, "ingredient not found")
		}
		return nil
	})
}

// RemoveIngredient 移除食材
func (s *Service) RemoveIngredient(ctx context.Context, id, name string) (*Session, error) {
	return s.Update(ctx, id, func(sess *Session) error {
		if !sess.Pantry.Remove(name) {
			return ErrItemNotFound.Wrap(nil, "ingredient not found")
		}
		return nil
	})
}

// AddStaple 新增常備品
func (s *Service) AddStaple(ctx context.Context, id string, ing common.Ingredient) (*Session, error) {
	return s.Update(ctx, id, func(sess *Session) error {
		if !sess.Pantry.AddStaple(ing) {
			return ErrItemExists.Wrap(nil, "staple already exists or name is empty")
		}
		return nil
	})
}

// RemoveStaple 移除常備品
func (s *Service) RemoveStaple(ctx context.Context, id, name string) (*Session, error) {
	return s.Update(ctx, id, func(sess *Session) error {
		if !sess.Pantry.RemoveStaple(name) {
			return ErrItemNotFound.Wrap(nil, "staple not found")
		}
		return nil
	})
}

// AddGroceries 加入購物清單，已存在的項目保持不變
func (s *Service) AddGroceries(ctx context.Context, id string, items []common.GroceryItem) (*Session, error) {
	return s.updateGroceries(ctx, id, func(l *grocery.List) error {
		for _, item := range items {
			l.Add(item.Name, item.Quantity)
		}
		return nil
	})
}

// AddMissingGroceries 將食譜中目前沒有的食材加入購物清單
func (s *Service) AddMissingGroceries(ctx context.Context, id string, recipeID int) (*Session, error) {
	return s.Update(ctx, id, func(sess *Session) error {
		for _, r := range sess.Recipes {
			if r.ID != recipeID {
				continue
			}
			l := grocery.NewList(sess.Groceries)
			for _, name := range grocery.Missing(r, sess.Ingredients()) {
				l.Add(name, "")
			}
			sess.Groceries = l.Items()
			return nil
		}
		return ErrItemNotFound.Wrap(nil, "recipe not found")
	})
}

// ToggleGrocery 切換已購買狀態
func (s *Service) ToggleGrocery(ctx context.Context, id, itemID string) (*Session, error) {
	return s.updateGroceries(ctx, id, func(l *grocery.List) error {
		if _, ok := l.Toggle(itemID); !ok {
			return ErrItemNotFound.Wrap(nil, "grocery item not found")
		}
		return nil
	})
}

// RemoveGrocery 移除單一項目
func (s *Service) RemoveGrocery(ctx context.Context, id, itemID string) (*Session, error) {
	return s.updateGroceries(ctx, id, func(l *grocery.List) error {
		if !l.Remove(itemID) {
			return ErrItemNotFound.Wrap(nil, "grocery item not found")
		}
		return nil
	})
}

// ClearGroceries 清空購物清單
func (s *Service) ClearGroceries(ctx context.Context, id string) (*Session, error) {
	return s.updateGroceries(ctx, id, func(l *grocery.List) error {
		l.Clear()
		return nil
	})
}

func (s *Service) updateGroceries(ctx context.Context, id string, fn func(*grocery.List) error) (*Session, error) {
	return s.Update(ctx, id, func(sess *Session) error {
		l := grocery.NewList(sess.Groceries)
		if err := fn(l); err != nil {
			return err
		}
		sess.Groceries = l.Items()
		return nil
	})
}

func classifyKeepQuantity(ing common.Ingredient) common.Ingredient {
	classified := ingredient.Classify(ing.Name)
	classified.Quantity = ing.Quantity
	return classified
}
