// Package grocery 購物清單。List 由呼叫端持有（通常是 session），
// 只能透過 Add / Remove / Toggle / Clear 變更。
package grocery

import (
	"strings"

	"pantry-pal/internal/core/ingredient"
	"pantry-pal/internal/pkg/common"
)

// List 購物清單
type List struct {
	items []common.GroceryItem
}

// NewList 由既有項目建立清單，重複的 ID 只保留第一筆
func NewList(items []common.GroceryItem) *List {
	l := &List{}
	for _, item := range items {
		if item.ID == "" {
			item.ID = ingredient.Slug(item.Name)
		}
		if item.ID == "" || l.index(item.ID) != -1 {
			continue
		}
		l.items = append(l.items, item)
	}
	return l
}

// Add 加入項目並回傳清單中的項目；同一食材（正規化後）已存在時不變動
func (l *List) Add(name, quantity string) (common.GroceryItem, bool) {
	id := ingredient.Slug(name)
	if id == "" {
		return common.GroceryItem{}, false
	}
	if i := l.index(id); i != -1 {
		return l.items[i], false
	}
	item := common.GroceryItem{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Quantity: strings.TrimSpace(quantity),
	}
	l.items = append(l.items, item)
	return item, true
}

// Remove 移除項目
func (l *List) Remove(id string) bool {
	i := l.index(id)
	if i == -1 {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

// Toggle 切換已購買狀態，回傳切換後的項目
func (l *List) Toggle(id string) (common.GroceryItem, bool) {
	i := l.index(id)
	if i == -1 {
		return common.GroceryItem{}, false
	}
	l.items[i].Purchased = !l.items[i].Purchased
	return l.items[i], true
}

// Clear 清空清單
func (l *List) Clear() {
	l.items = nil
}

// Contains 名稱對應的食材是否已在清單中
func (l *List) Contains(name string) bool {
	return l.index(ingredient.Slug(name)) != -1
}

// Items 回傳項目副本
func (l *List) Items() []common.GroceryItem {
	out := make([]common.GroceryItem, len(l.items))
	copy(out, l.items)
	return out
}

// Len 項目數量
func (l *List) Len() int {
	return len(l.items)
}

// Missing 食譜中不在使用者食材內的食材，使用與食譜計分相同的比對規則
func Missing(recipe common.Recipe, userIngredients []string) []string {
	var out []string
	for _, ing := range recipe.Ingredients {
		if ingredient.MatchPercentage(userIngredients, []string{ing}) == 0 {
			out = append(out, ing)
		}
	}
	return out
}

func (l *List) index(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range l.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
