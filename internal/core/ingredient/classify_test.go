package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantry-pal/internal/pkg/common"
)

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, common.CategoryProduce, CategoryOf("Bell_Peppers"))
	assert.Equal(t, common.CategoryProteins, CategoryOf("Chicken breast"))
	assert.Equal(t, common.CategoryDairy, CategoryOf("Greek Yogurt"))
	assert.Equal(t, common.CategoryGrains, CategoryOf("brown rice"))
	assert.Equal(t, common.CategoryCondiments, CategoryOf("olive oil"))
	assert.Equal(t, common.CategoryOther, CategoryOf("water"))
}

func TestShouldUseSoon(t *testing.T) {
	assert.True(t, ShouldUseSoon("Baby Spinach"))
	assert.True(t, ShouldUseSoon("milk"))
	assert.False(t, ShouldUseSoon("rice"))
}

func TestClassifyAll(t *testing.T) {
	got := ClassifyAll([]string{"Eggs", "eggs", "Hot_Dog", "Milk"}, map[string]int{"eggs": 6, "milk": 1})
	require.Len(t, got, 3)

	assert.Equal(t, common.Ingredient{Name: "eggs", Category: common.CategoryProteins, Quantity: 6}, got[0])
	assert.Equal(t, "hot dog", got[1].Name)
	assert.Equal(t, common.CategoryOther, got[1].Category)
	assert.Equal(t, common.Ingredient{Name: "milk", Category: common.CategoryDairy, UseSoon: true, Quantity: 1}, got[2])
}
