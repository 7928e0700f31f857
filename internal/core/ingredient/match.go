package ingredient

import (
	"math"
	"strings"
)

// MatchPercentage 計算食譜食材被使用者食材覆蓋的百分比（0..100）。
//
// 兩邊只做大小寫轉換，不做完整正規化。食譜食材只要包含任一使用者食材，
// 或被任一使用者食材包含，就算命中；所以 "chicken" 與 "chicken breast"
// 互相命中，"egg" 也會命中 "eggplant"。
func MatchPercentage(userIngredients, recipeIngredients []string) int {
	if len(recipeIngredients) == 0 {
		return 0
	}

	users := make([]string, 0, len(userIngredients))
	for _, u := range userIngredients {
		if u == "" {
			continue
		}
		users = append(users, strings.ToLower(u))
	}

	matched := 0
	for _, ing := range recipeIngredients {
		if matches(users, strings.ToLower(ing)) {
			matched++
		}
	}

	return int(math.Floor(float64(matched)/float64(len(recipeIngredients))*100 + 0.5))
}

func matches(users []string, recipeIngredient string) bool {
	for _, u := range users {
		if strings.Contains(recipeIngredient, u) || strings.Contains(u, recipeIngredient) {
			return true
		}
	}
	return false
}
