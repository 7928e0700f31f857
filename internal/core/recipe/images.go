package recipe

import (
	"strings"

	"pantry-pal/internal/pkg/common"
)

// FallbackImage 沒有任何規則命中時使用
const FallbackImage = "https://images.unsplash.com/photo-1540189549336-e6e99c3679fe?w=600&q=80"

// 圖庫
const (
	imageBreakfast = "https://images.unsplash.com/photo-1729223921247-c85b9b1a8ea8?w=1080&q=80"
	imageSalad     = "https://images.unsplash.com/photo-1633618309834-665b69ca6bd0?w=1080&q=80"
	imageVeggies   = "https://images.unsplash.com/photo-1760445529098-949fcfc7c9a9?w=1080&q=80"
	imageStirFry   = "https://images.unsplash.com/photo-1761314025701-34795be5f737?w=1080&q=80"
	imageSoup      = "https://images.unsplash.com/photo-1553881781-4c55163dc5fd?w=1080&q=80"
	imageProtein   = "https://images.unsplash.com/photo-1633524792246-f25f5b0d66dc?w=1080&q=80"
	imagePasta     = "https://images.unsplash.com/photo-1627207644206-a2040d60ecad?w=1080&q=80"
	imageSmoothie  = "https://images.unsplash.com/photo-1505252585461-04db1eb84625?w=1080&q=80"
)

// imageRules 依序比對，第一個命中的規則決定圖片
var imageRules = []struct {
	keywords []string
	image    string
}{
	{[]string{"smoothie", "shake", "juice"}, imageSmoothie},
	{[]string{"salad", "greens", "vinaigrette"}, imageSalad},
	{[]string{"taco", "tortilla", "burrito", "wrap", "quesadilla"}, imageVeggies},
	{[]string{"pasta", "carbonara", "spaghetti", "penne", "mac"}, imagePasta},
	{[]string{"stir fry", "stir-fry", "fried rice", "noodle", "soy sauce"}, imageStirFry},
	{[]string{"soup", "broth", "bisque", "chowder"}, imageSoup},
	{[]string{"salmon", "fish", "seafood"}, imageProtein},
	{[]string{"omelet", "scramble", "egg", "breakfast", "yogurt"}, imageBreakfast},
	{[]string{"chicken", "beef", "pork", "tofu"}, imageProtein},
	{[]string{"roast", "roasted", "bake", "baked", "cauliflower", "broccoli"}, imageVeggies},
}

// ResolveImage 依名稱、菜系、餐別與食材決定圖片；模型提供的圖片一律忽略
func ResolveImage(r common.Recipe) string {
	parts := append([]string{r.Name, r.Cuisine, r.MealTime}, r.Ingredients...)
	haystack := strings.ToLower(strings.Join(parts, " "))

	for _, rule := range imageRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.image
			}
		}
	}

	cuisine := strings.ToLower(r.Cuisine)
	switch {
	case strings.Contains(cuisine, "italian"):
		return imagePasta
	case strings.Contains(cuisine, "asian"):
		return imageStirFry
	case strings.Contains(cuisine, "mediterranean"):
		return imageSalad
	case strings.ToLower(r.MealTime) == "breakfast":
		return imageBreakfast
	}
	return FallbackImage
}

// ImageLibrary 所有可能的圖片，含預設圖
func ImageLibrary() []string {
	return []string{
		imageBreakfast, imageSalad, imageVeggies, imageStirFry,
		imageSoup, imageProtein, imagePasta, imageSmoothie, FallbackImage,
	}
}
