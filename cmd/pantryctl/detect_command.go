package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"pantry-pal/internal/core/ai/image"
	"pantry-pal/internal/core/detect"
	"pantry-pal/internal/core/ingredient"
	"pantry-pal/internal/pkg/common"

	"github.com/spf13/cobra"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <image>",
		Short: "Detect ingredients in a photo using the configured backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			if len(data) == 0 {
				return fmt.Errorf("%s: %w", args[0], image.ErrEmptyImage)
			}

			processor := image.NewProcessor(cfg.Image.MaxEdge, cfg.Image.JPEGQuality)
			gateway := detect.NewGateway(cfg.Detection, processor)

			result, err := gateway.Detect(cmd.Context(), data, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			items := ingredient.ClassifyAll(result.Ingredients, result.Quantities)

			if *ctx.asJSON {
				return writeJSON(cmd, struct {
					*detect.Result
					Items []common.Ingredient `json:"items"`
				}{result, items})
			}

			rows := make([][]string, 0, len(items))
			for _, it := range items {
				qty := ""
				if it.Quantity > 0 {
					qty = strconv.Itoa(it.Quantity)
				}
				useSoon := ""
				if it.UseSoon {
					useSoon = "yes"
				}
				rows = append(rows, []string{it.Name, string(it.Category), qty, useSoon})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backend: %s\n", result.Backend)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Ingredient", "Category", "Qty", "Use soon"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <ingredient>...",
		Short: "Show the category and use-soon flag for ingredient names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := ingredient.ClassifyAll(args, nil)
			if *ctx.asJSON {
				return writeJSON(cmd, items)
			}

			rows := make([][]string, 0, len(items))
			for _, it := range items {
				rows = append(rows, []string{it.Name, string(it.Category), strconv.FormatBool(it.UseSoon)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Ingredient", "Category", "Use soon"}, rows, nil))
			return nil
		},
	}
}
