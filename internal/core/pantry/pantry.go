// Package pantry 管理一個 session 中使用者確認過的食材：偵測結果、手動新增的
// 食材與家中常備品（staples）。所有比對都以正規名稱為準。
package pantry

import (
	"github.com/samber/lo"

	"pantry-pal/internal/core/ingredient"
	"pantry-pal/internal/pkg/common"
)

// DefaultStaples 預設假設家中都有的常備品
func DefaultStaples() []common.Ingredient {
	return []common.Ingredient{
		{Name: "water", Category: common.CategoryOther},
		{Name: "salt", Category: common.CategoryCondiments},
		{Name: "pepper", Category: common.CategoryCondiments},
		{Name: "oil", Category: common.CategoryCondiments},
	}
}

// Set 使用者的食材工作清單
type Set struct {
	Detected []common.Ingredient `json:"detected"`
	Staples  []common.Ingredient `json:"staples"`
}

// New 建立只含預設常備品的工作清單
func New() *Set {
	return &Set{
		Detected: []common.Ingredient{},
		Staples:  DefaultStaples(),
	}
}

// Replace 以新的偵測結果取代目前的食材清單
func (s *Set) Replace(names []string, quantities map[string]int) {
	s.Detected = ingredient.ClassifyAll(names, quantities)
}

// Add 新增食材；同名（正規化後）已存在時不變動並回傳 false
func (s *Set) Add(ing common.Ingredient) bool {
	var added bool
	s.Detected, added = add(s.Detected, ing)
	return added
}

// Remove 依名稱移除食材
func (s *Set) Remove(name string) bool {
	var removed bool
	s.Detected, removed = remove(s.Detected, name)
	return removed
}

// Edit 以 ing 取代名為 oldName 的食材。新名稱若與其他食材衝突，
// 以這次編輯為準並移除另一筆。找不到 oldName 時回傳 false。
func (s *Set) Edit(oldName string, ing common.Ingredient) bool {
	oldKey := ingredient.Normalize(oldName)
	ing = canonical(ing)
	if ing.Name == "" {
		return false
	}

	idx := lo.IndexOf(keys(s.Detected), oldKey)
	if idx == -1 {
		return false
	}

	s.Detected[idx] = ing
	s.Detected = lo.Filter(s.Detected, func(item common.Ingredient, i int) bool {
		return i == idx || item.Name != ing.Name
	})
	return true
}

// AddStaple 新增常備品
func (s *Set) AddStaple(ing common.Ingredient) bool {
	ing.UseSoon = false
	var added bool
	s.Staples, added = add(s.Staples, ing)
	return added
}

// RemoveStaple 移除常備品
func (s *Set) RemoveStaple(name string) bool {
	var removed bool
	s.Staples, removed = remove(s.Staples, name)
	return removed
}

// VisibleStaples 未與偵測食材重複的常備品
func (s *Set) VisibleStaples() []common.Ingredient {
	detected := lo.SliceToMap(s.Detected, func(i common.Ingredient) (string, struct{}) {
		return ingredient.Normalize(i.Name), struct{}{}
	})
	return lo.Filter(s.Staples, func(i common.Ingredient, _ int) bool {
		_, dup := detected[ingredient.Normalize(i.Name)]
		return !dup
	})
}

// All 合併偵測食材與常備品，同名時以偵測食材為準
func (s *Set) All() []common.Ingredient {
	return append(append([]common.Ingredient{}, s.Detected...), s.VisibleStaples()...)
}

// Names 用於食譜比對的正規名稱清單：偵測食材在前、常備品在後
func (s *Set) Names() []string {
	names := lo.Map(s.All(), func(i common.Ingredient, _ int) string {
		return ingredient.Normalize(i.Name)
	})
	return lo.Uniq(lo.Compact(names))
}

// UseSoon 需優先使用的食材
func (s *Set) UseSoon() []common.Ingredient {
	return lo.Filter(s.All(), func(i common.Ingredient, _ int) bool { return i.UseSoon })
}

// ByCategory 依分類分組
func (s *Set) ByCategory() map[common.Category][]common.Ingredient {
	return lo.GroupBy(s.All(), func(i common.Ingredient) common.Category { return i.Category })
}

func canonical(ing common.Ingredient) common.Ingredient {
	ing.Name = ingredient.Normalize(ing.Name)
	if !ing.Category.Valid() {
		ing.Category = ingredient.CategoryOf(ing.Name)
	}
	return ing
}

func keys(items []common.Ingredient) []string {
	return lo.Map(items, func(i common.Ingredient, _ int) string { return ingredient.Normalize(i.Name) })
}

func add(items []common.Ingredient, ing common.Ingredient) ([]common.Ingredient, bool) {
	ing = canonical(ing)
	if ing.Name == "" || lo.Contains(keys(items), ing.Name) {
		return items, false
	}
	return append(items, ing), true
}

func remove(items []common.Ingredient, name string) ([]common.Ingredient, bool) {
	key := ingredient.Normalize(name)
	out := lo.Reject(items, func(i common.Ingredient, _ int) bool {
		return ingredient.Normalize(i.Name) == key
	})
	return out, len(out) != len(items)
}
