package main

import (
	"fmt"
	"os"
	"strconv"

	"pantry-pal/internal/core/ai/gemini"
	"pantry-pal/internal/core/ai/provider"
	"pantry-pal/internal/core/ingredient"
	"pantry-pal/internal/core/recipe"
	"pantry-pal/internal/pkg/common"

	"github.com/spf13/cobra"
)

// addFilterFlags 註冊五個篩選欄位
func addFilterFlags(cmd *cobra.Command, f *common.Filters) {
	cmd.Flags().StringVar(&f.Cuisine, "cuisine", common.Any, "Cuisine filter")
	cmd.Flags().StringVar(&f.SkillLevel, "skill", common.Any, "Skill level: beginner, intermediate, advanced")
	cmd.Flags().StringVar(&f.CookTime, "cook-time", common.Any, "Cook time bucket: quick, moderate, extended, lengthy")
	cmd.Flags().StringVar(&f.Budget, "budget", common.Any, "Budget: low, moderate, high")
	cmd.Flags().StringVar(&f.MealTime, "meal-time", common.Any, "Meal time: breakfast, lunch, dinner, snack")
}

func newRecipesCommand(ctx *commandContext) *cobra.Command {
	var (
		ingredients []string
		filters     common.Filters
	)

	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Generate recipe suggestions with Gemini",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}

			var p provider.Provider
			if cfg.Gemini.APIKey != "" {
				client, err := gemini.NewClient(cmd.Context(), cfg.Gemini)
				if err != nil {
					return err
				}
				defer client.Close()
				p = client
			}

			recipes, err := recipe.NewService(p, cfg.Gemini).Generate(cmd.Context(), ingredients, filters)
			if err != nil {
				return err
			}
			return printRecipes(cmd, ctx, recipes)
		},
	}

	cmd.Flags().StringSliceVarP(&ingredients, "ingredient", "i", nil, "Ingredient you have (repeatable or comma separated)")
	addFilterFlags(cmd, &filters)
	_ = cmd.MarkFlagRequired("ingredient")
	return cmd
}

func newRankCommand(ctx *commandContext) *cobra.Command {
	var (
		ingredients []string
		filters     common.Filters
	)

	cmd := &cobra.Command{
		Use:   "rank <recipes.json>",
		Short: "Filter and rank saved recipes against your ingredients without calling the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read recipes: %w", err)
			}

			// 接受 {"recipes":[...]} 或直接的陣列
			var recipes []common.Recipe
			if common.IsJSONArray(string(data)) {
				err = common.ParseJSON(string(data), &recipes)
			} else {
				var wrapped struct {
					Recipes []common.Recipe `json:"recipes"`
				}
				err = common.ParseJSON(string(data), &wrapped)
				recipes = wrapped.Recipes
			}
			if err != nil {
				return fmt.Errorf("parse recipes: %w", err)
			}

			ranked := ingredient.FilterAndRank(recipes, ingredients, filters.WithDefaults())
			return printRecipes(cmd, ctx, ranked)
		},
	}

	cmd.Flags().StringSliceVarP(&ingredients, "ingredient", "i", nil, "Ingredient you have (repeatable or comma separated)")
	addFilterFlags(cmd, &filters)
	return cmd
}

func printRecipes(cmd *cobra.Command, ctx *commandContext, recipes []common.Recipe) error {
	if *ctx.asJSON {
		return writeJSON(cmd, map[string]any{"recipes": recipes})
	}

	rows := make([][]string, 0, len(recipes))
	for _, r := range recipes {
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			r.Name,
			r.Cuisine,
			r.SkillLevel,
			r.CookTime,
			r.MealTime,
			strconv.Itoa(r.MatchPercentage) + "%",
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"ID", "Name", "Cuisine", "Skill", "Cook time", "Meal", "Match"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))
	return nil
}
