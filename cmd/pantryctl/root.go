package main

import (
	"sync"

	"pantry-pal/internal/infrastructure/config"
	"pantry-pal/internal/pkg/common"

	"github.com/spf13/cobra"
)

// commandContext 延遲載入設定，讓不需要設定的指令不會因環境變數失敗
type commandContext struct {
	once    sync.Once
	cfg     *config.Config
	err     error
	verbose *bool
	asJSON  *bool
}

func (c *commandContext) config() (*config.Config, error) {
	c.once.Do(func() {
		c.cfg, c.err = config.LoadConfig()
		if c.err != nil {
			return
		}
		if *c.verbose {
			c.err = common.InitLogger("debug", c.cfg.LogFile)
		}
	})
	return c.cfg, c.err
}

func newRootCommand() *cobra.Command {
	var verbose, asJSON bool
	ctx := &commandContext{verbose: &verbose, asJSON: &asJSON}

	rootCmd := &cobra.Command{
		Use:           "pantryctl",
		Short:         "Detect ingredients and generate recipes from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write debug logs to stderr")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	rootCmd.AddCommand(newDetectCommand(ctx))
	rootCmd.AddCommand(newRecipesCommand(ctx))
	rootCmd.AddCommand(newRankCommand(ctx))
	rootCmd.AddCommand(newClassifyCommand(ctx))

	return rootCmd
}
