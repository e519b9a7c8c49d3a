package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nestor-churin/AlcoMeterBot/internal/app"
	"github.com/nestor-churin/AlcoMeterBot/internal/config"
	loginfra "github.com/nestor-churin/AlcoMeterBot/internal/infra/logger"
	"github.com/nestor-churin/AlcoMeterBot/internal/repo/ledger"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "alcometer",
	Short:   "Telegram bot that tracks drinks confirmed by video notes",
	Version: version,
	RunE:    runBot,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start polling Telegram (default)",
	RunE:  runBot,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply ledger migrations and exit",
	RunE:  runMigrate,
}

func init() {
	defaultPath := os.Getenv("APP_CONFIG")
	if defaultPath == "" {
		defaultPath = config.DefaultPath
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultPath, "path to the YAML config")
	rootCmd.SilenceUsage = true
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(migrateCmd)
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := loginfra.New(cfg.Log.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("create app", zap.Error(err))
		return err
	}

	logger.Info("bot starting", zap.String("version", version))
	if err := application.Run(ctx); err != nil {
		logger.Error("bot stopped with error", zap.Error(err))
		return err
	}
	logger.Info("bot stopped")
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := ledger.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}
	logger.Info("ledger migrated", zap.String("driver", cfg.Database.Driver))
	return nil
}
