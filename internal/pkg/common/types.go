package common

import "strings"

// Category 食材分類
type Category string

const (
	CategoryProduce    Category = "produce"
	CategoryProteins   Category = "proteins"
	CategoryDairy      Category = "dairy"
	CategoryGrains     Category = "grains"
	CategoryCondiments Category = "condiments"
	CategoryOther      Category = "other"
)

// Categories 依顯示順序列出所有分類
var Categories = []Category{
	CategoryProduce,
	CategoryProteins,
	CategoryDairy,
	CategoryGrains,
	CategoryCondiments,
	CategoryOther,
}

// Valid 檢查分類是否合法
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Ingredient 食材
type Ingredient struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	UseSoon  bool     `json:"useSoon"`
	Quantity int      `json:"quantity,omitempty"`
}

// Any 篩選條件的萬用值
const Any = "any"

// Filters 使用者偏好設定
type Filters struct {
	Cuisine    string `json:"cuisine"`
	SkillLevel string `json:"skillLevel"`
	CookTime   string `json:"cookTime"`
	Budget     string `json:"budget"`
	MealTime   string `json:"mealTime"`
}

// DefaultFilters 全部為 "any" 的篩選條件
func DefaultFilters() Filters {
	return Filters{
		Cuisine:    Any,
		SkillLevel: Any,
		CookTime:   Any,
		Budget:     Any,
		MealTime:   Any,
	}
}

// WithDefaults 將空白欄位補成 "any"
func (f Filters) WithDefaults() Filters {
	orAny := func(v string) string {
		if strings.TrimSpace(v) == "" {
			return Any
		}
		return v
	}
	return Filters{
		Cuisine:    orAny(f.Cuisine),
		SkillLevel: orAny(f.SkillLevel),
		CookTime:   orAny(f.CookTime),
		Budget:     orAny(f.Budget),
		MealTime:   orAny(f.MealTime),
	}
}

// Recipe 食譜
type Recipe struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Cuisine         string   `json:"cuisine"`
	SkillLevel      string   `json:"skillLevel"`
	CookTime        string   `json:"cookTime"`
	Budget          string   `json:"budget"`
	MealTime        string   `json:"mealTime"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
	Image           string   `json:"image"`
	MatchPercentage int      `json:"matchPercentage"`
}

// GroceryItem 購物清單項目
type GroceryItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Purchased bool   `json:"purchased"`
	Quantity  string `json:"quantity,omitempty"`
}
