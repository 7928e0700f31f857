package ingredient

import (
	"strings"

	"pantry-pal/internal/pkg/common"
)

type categoryKeywords struct {
	category common.Category
	keywords []string
}

// 依序比對，先命中者為準
var categoryTable = []categoryKeywords{
	{common.CategoryProduce, []string{
		"avocado", "lettuce", "spinach", "salad", "onion", "tomato", "pepper", "broccoli",
		"carrot", "potato", "mushroom", "cauliflower", "cucumber", "zucchini", "apple", "fruit",
	}},
	{common.CategoryProteins, []string{"egg", "chicken", "beef", "pork", "turkey", "tofu", "fish", "salmon", "tuna", "bean"}},
	{common.CategoryDairy, []string{"milk", "cheese", "yogurt", "kefir", "cream", "butter", "latte"}},
	{common.CategoryGrains, []string{"bread", "rice", "pasta", "tortilla", "noodle", "oat", "quinoa"}},
	{common.CategoryCondiments, []string{"sauce", "oil", "vinegar", "ketchup", "mustard", "mayo", "salsa", "soy"}},
}

var useSoonKeywords = []string{"avocado", "spinach", "salad", "lettuce", "berry", "kefir", "milk", "yogurt"}

// CategoryOf 依關鍵字推測食材分類
func CategoryOf(name string) common.Category {
	normalized := Normalize(name)
	for _, entry := range categoryTable {
		if containsAny(normalized, entry.keywords) {
			return entry.category
		}
	}
	return common.CategoryOther
}

// ShouldUseSoon 是否為容易過期、應優先使用的食材
func ShouldUseSoon(name string) bool {
	return containsAny(Normalize(name), useSoonKeywords)
}

// Classify 由名稱建立帶分類的食材，名稱使用正規形式
func Classify(name string) common.Ingredient {
	return common.Ingredient{
		Name:     Normalize(name),
		Category: CategoryOf(name),
		UseSoon:  ShouldUseSoon(name),
	}
}

// ClassifyAll 正規化、去重並分類偵測結果；quantities 以正規名稱為鍵
func ClassifyAll(names []string, quantities map[string]int) []common.Ingredient {
	unique := Dedupe(names)
	out := make([]common.Ingredient, 0, len(unique))
	for _, name := range unique {
		ing := Classify(name)
		if q, ok := quantities[ing.Name]; ok {
			ing.Quantity = q
		}
		out = append(out, ing)
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
