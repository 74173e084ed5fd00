package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/impact-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "impact-cli",
	Short: "Business impact estimates from company data and a methodology",
	Long:  "Evaluates KPI formulas against company data under conservative, moderate and aggressive scenarios, discounts by data confidence, and projects realization and ROI.",
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
