package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-service/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:     "briefing",
	Short:   "AI pre-call briefing service",
	Long:    "Gathers website text, recent news and campaign context for a lead, asks an LLM for a structured sales briefing, and writes it to Salesforce or a local store.",
	Version: version,
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
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
