package recipe

import (
	"encoding/json"
	"fmt"
	"strings"

	"pantry-pal/internal/pkg/common"
)

// BuildPrompt 組出固定格式的提示詞，相同輸入產生相同輸出
func BuildPrompt(ingredients []string, filters common.Filters, count int) string {
	filterJSON, err := json.Marshal(filters.WithDefaults())
	if err != nil {
		// Filters 只有字串欄位
		filterJSON = []byte("{}")
	}

	lines := []string{
		"You are a recipe recommendation engine for a web app.",
		"Return ONLY valid JSON. No markdown, no extra keys, no commentary.",
		"",
		`Schema: {"recipes":[{"name":string,"cuisine":string,"skillLevel":string,"cookTime":string,"budget":string,"mealTime":string,"ingredients":[string],"instructions":[string]}]}`,
		"",
		"User ingredients: " + strings.Join(ingredients, ", "),
		"User filters (strings, may be 'any'): " + string(filterJSON),
		"",
		"Constraints:",
		fmt.Sprintf("- Provide exactly %d recipes.", count),
		"- Prefer recipes that use many of the user ingredients.",
		"- If you add ingredients not listed, keep them minimal and realistic.",
		"- Keep instructions short, safe, and practical.",
		"- For each recipe, provide 4-6 concise instruction steps.",
		"- cookTime format like: '15 mins', '45 mins'.",
		"- budget should be one of: low, moderate, high.",
		"- skillLevel should be one of: beginner, intermediate, advanced.",
		"- mealTime should be one of: breakfast, lunch, dinner, snack.",
		"- Do not include image URLs; the server assigns images.",
	}
	return strings.Join(lines, "\n")
}
