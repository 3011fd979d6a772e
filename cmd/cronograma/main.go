package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/cronograma-api/internal/app"
	"github.com/noah-isme/cronograma-api/pkg/config"
	"github.com/noah-isme/cronograma-api/pkg/logger"
)

var (
	baseDir string
	timeout time.Duration

	cfg    *config.Config
	logr   *zap.Logger
	openFn = app.Open
)

var rootCmd = &cobra.Command{
	Use:   "cronograma",
	Short: "Schedule ingestion and plan compliance tooling",
	Long: `cronograma imports the consolidated master schedule into the course catalog
and evaluates students' open plans against the program completion rules.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if baseDir != "" {
			cfg.Import.BaseDir = baseDir
		}
		logr, err = logger.New(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logr != nil {
			_ = logr.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "Import directory (default: IMPORT_BASE_DIR)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(atRiskCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
