package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/healthyplate/menu-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "menu-cli",
	Short: "Menu feed normalization and calorie enrichment pipeline",
	Long:  "Normalizes heterogeneous restaurant menu feeds into a canonical item table, computes vendor aggregates, and fills missing calories via fuzzy reference lookup and a text-regression fallback.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
