package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cardsift/cardsift/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cardsift",
	Short: "Credit card product extraction toolkit",
	Long:  "Pulls credit card product pages and brochures, extracts structured card records with a rule-based engine, and exports them as JSON, CSV, or Excel.",
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
