package ingredient

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"pantry-pal/internal/pkg/common"
)

// 烹調時間區間
const (
	CookTimeQuick    = "quick"    // < 15 分鐘
	CookTimeModerate = "moderate" // 15–30 分鐘
	CookTimeExtended = "extended" // 30–60 分鐘
	CookTimeLengthy  = "lengthy"  // > 60 分鐘
)

// LeadingMinutes 解析烹調時間字串開頭的整數，例如 "45 mins" -> 45
func LeadingMinutes(cookTime string) (int, bool) {
	s := strings.TrimSpace(cookTime)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && unicode.IsDigit(rune(s[end])) {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// InCookTimeBucket 判斷烹調時間是否落在指定區間。
// 區間邊界互相重疊（15、30、60 各屬於兩個區間）；無法解析的時間不受限制，
// 未知的區間名稱也不做限制。
func InCookTimeBucket(cookTime, bucket string) bool {
	if bucket == common.Any || bucket == "" {
		return true
	}
	minutes, ok := LeadingMinutes(cookTime)
	if !ok {
		return true
	}
	switch bucket {
	case CookTimeQuick:
		return minutes < 15
	case CookTimeModerate:
		return minutes >= 15 && minutes <= 30
	case CookTimeExtended:
		return minutes >= 30 && minutes <= 60
	case CookTimeLengthy:
		return minutes > 60
	default:
		return true
	}
}

// MatchesFilters 檢查食譜是否符合所有非 "any" 的篩選條件
func MatchesFilters(r common.Recipe, f common.Filters) bool {
	f = f.WithDefaults()
	exact := func(filter, value string) bool {
		return filter == common.Any || filter == value
	}
	return exact(f.Cuisine, r.Cuisine) &&
		exact(f.SkillLevel, r.SkillLevel) &&
		exact(f.MealTime, r.MealTime) &&
		exact(f.Budget, r.Budget) &&
		InCookTimeBucket(r.CookTime, f.CookTime)
}

// FilterAndRank 以目前的使用者食材重新計分，留下至少一項食材命中且符合篩選
// 條件的食譜，依命中率由高到低穩定排序。輸入切片不會被修改。
func FilterAndRank(recipes []common.Recipe, userIngredients []string, filters common.Filters) []common.Recipe {
	out := make([]common.Recipe, 0, len(recipes))
	for _, r := range recipes {
		r.MatchPercentage = MatchPercentage(userIngredients, r.Ingredients)
		if r.MatchPercentage == 0 {
			continue
		}
		if !MatchesFilters(r, filters) {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchPercentage > out[j].MatchPercentage
	})
	return out
}
