package recipe

import (
	"fmt"

	"pantry-pal/internal/core/ingredient"
	"pantry-pal/internal/pkg/common"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// modelRecipe 模型回傳的單一食譜，不含 id、image、matchPercentage
type modelRecipe struct {
	Name         string   `json:"name" validate:"required"`
	Cuisine      string   `json:"cuisine" validate:"required"`
	SkillLevel   string   `json:"skillLevel" validate:"required"`
	CookTime     string   `json:"cookTime" validate:"required"`
	Budget       string   `json:"budget" validate:"required"`
	MealTime     string   `json:"mealTime" validate:"required"`
	Ingredients  []string `json:"ingredients" validate:"min=1,max=40"`
	Instructions []string `json:"instructions" validate:"min=1,max=25"`
}

type modelResponse struct {
	Recipes []modelRecipe `json:"recipes" validate:"min=1,max=12,dive"`
}

// parseModelOutput 從模型輸出取出 JSON 並做嚴格驗證。
// 裸陣列視為 {"recipes": [...]}；任一食譜不合格即整批拒絕。
func parseModelOutput(text string) ([]modelRecipe, error) {
	raw, err := common.ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var resp modelResponse
	if common.IsJSONArray(raw) {
		if err := common.ParseJSON(raw, &resp.Recipes); err != nil {
			return nil, fmt.Errorf("failed to parse recipe array: %w", err)
		}
	} else {
		if err := common.ParseJSON(raw, &resp); err != nil {
			return nil, fmt.Errorf("failed to parse recipe object: %w", err)
		}
	}

	if err := validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("model output failed validation: %w", err)
	}
	return resp.Recipes, nil
}

func (m modelRecipe) toRecipe(id int, userIngredients []string) common.Recipe {
	r := common.Recipe{
		ID:           id,
		Name:         m.Name,
		Cuisine:      m.Cuisine,
		SkillLevel:   m.SkillLevel,
		CookTime:     m.CookTime,
		Budget:       m.Budget,
		MealTime:     m.MealTime,
		Ingredients:  m.Ingredients,
		Instructions: m.Instructions,
	}
	r.Image = ResolveImage(r)
	r.MatchPercentage = ingredient.MatchPercentage(userIngredients, m.Ingredients)
	return r
}
