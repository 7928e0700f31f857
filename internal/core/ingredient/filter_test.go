package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantry-pal/internal/pkg/common"
)

func sampleRecipes() []common.Recipe {
	return []common.Recipe{
		{ID: 1, Name: "Stir-Fry", Cuisine: "asian", SkillLevel: "beginner", CookTime: "20 mins", Budget: "low", MealTime: "dinner",
			Ingredients: []string{"chicken breast", "bell peppers", "onions", "soy sauce", "garlic", "rice"}},
		{ID: 2, Name: "Omelet", Cuisine: "american", SkillLevel: "beginner", CookTime: "10 mins", Budget: "low", MealTime: "breakfast",
			Ingredients: []string{"eggs", "cheese"}},
		{ID: 3, Name: "Beef Stew", Cuisine: "american", SkillLevel: "intermediate", CookTime: "90 mins", Budget: "moderate", MealTime: "dinner",
			Ingredients: []string{"beef", "potatoes", "carrots"}},
		{ID: 4, Name: "Caprese", Cuisine: "italian", SkillLevel: "beginner", CookTime: "45 mins", Budget: "moderate", MealTime: "lunch",
			Ingredients: []string{"tomatoes", "cheese", "basil"}},
	}
}

func TestLeadingMinutes(t *testing.T) {
	n, ok := LeadingMinutes("45 mins")
	require.True(t, ok)
	assert.Equal(t, 45, n)

	n, ok = LeadingMinutes("  10min")
	require.True(t, ok)
	assert.Equal(t, 10, n)

	_, ok = LeadingMinutes("about an hour")
	assert.False(t, ok)
}

func TestInCookTimeBucket(t *testing.T) {
	assert.False(t, InCookTimeBucket("45 mins", CookTimeQuick))
	assert.True(t, InCookTimeBucket("10 mins", CookTimeQuick))
	assert.False(t, InCookTimeBucket("15 mins", CookTimeQuick))
	assert.True(t, InCookTimeBucket("15 mins", CookTimeModerate))
	assert.True(t, InCookTimeBucket("30 mins", CookTimeModerate))
	assert.True(t, InCookTimeBucket("30 mins", CookTimeExtended))
	assert.True(t, InCookTimeBucket("60 mins", CookTimeExtended))
	assert.False(t, InCookTimeBucket("60 mins", CookTimeLengthy))
	assert.True(t, InCookTimeBucket("61 mins", CookTimeLengthy))
	assert.True(t, InCookTimeBucket("a while", CookTimeQuick))
	assert.True(t, InCookTimeBucket("45 mins", common.Any))
}

func TestFilterAndRankAllAny(t *testing.T) {
	user := []string{"eggs", "cheese", "chicken", "tomatoes"}
	recipes := sampleRecipes()

	got := FilterAndRank(recipes, user, common.DefaultFilters())

	// 全部為 any 時等於未篩選、依分數排序後的結果
	require.Len(t, got, 3)
	assert.Equal(t, []int{2, 4, 1}, []int{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, 100, got[0].MatchPercentage)
	assert.Equal(t, 67, got[1].MatchPercentage)
	assert.Equal(t, 17, got[2].MatchPercentage)

	// 原始切片不受影響
	assert.Equal(t, 0, recipes[0].MatchPercentage)
}

func TestFilterAndRankStableTies(t *testing.T) {
	recipes := []common.Recipe{
		{ID: 1, Ingredients: []string{"eggs", "flour"}},
		{ID: 2, Ingredients: []string{"eggs", "sugar"}},
		{ID: 3, Ingredients: []string{"eggs"}},
		{ID: 4, Ingredients: []string{"eggs", "milk"}},
	}
	got := FilterAndRank(recipes, []string{"eggs"}, common.Filters{})
	require.Len(t, got, 4)
	assert.Equal(t, []int{3, 1, 2, 4}, []int{got[0].ID, got[1].ID, got[2].ID, got[3].ID})
}

func TestFilterAndRankCookTime(t *testing.T) {
	user := []string{"cheese", "tomatoes"}
	filters := common.DefaultFilters()
	filters.CookTime = CookTimeQuick

	got := FilterAndRank(sampleRecipes(), user, filters)
	require.Len(t, got, 1)
	assert.Equal(t, "Omelet", got[0].Name)
}

func TestFilterAndRankExactFields(t *testing.T) {
	user := []string{"cheese", "beef", "chicken"}
	filters := common.Filters{MealTime: "dinner", Budget: "moderate"}

	got := FilterAndRank(sampleRecipes(), user, filters)
	require.Len(t, got, 1)
	assert.Equal(t, "Beef Stew", got[0].Name)
}
