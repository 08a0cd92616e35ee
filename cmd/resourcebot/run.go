package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	goutils "github.com/jkaninda/go-utils"
	"github.com/spf13/cobra"

	"github.com/jkaninda/resourcebot/internal/config"
	"github.com/jkaninda/resourcebot/internal/dialog"
	"github.com/jkaninda/resourcebot/internal/domain"
	"github.com/jkaninda/resourcebot/internal/gateway/telegram"
	"github.com/jkaninda/resourcebot/internal/obs"
	"github.com/jkaninda/resourcebot/internal/reminder"
	"github.com/jkaninda/resourcebot/internal/store"
	"github.com/jkaninda/resourcebot/internal/workflow"
)

var (
	runConfigPath string
	runDataDir    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot (long polling or webhook mode)",
	RunE:  runBot,
}

func init() {
	// Register flags on both root and run so that
	// `resourcebot --config path` and `resourcebot run --config path` both work.
	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().StringVar(&runConfigPath, "config", config.DefaultConfigPath(), "path to config file")
		cmd.Flags().StringVar(&runDataDir, "data-dir", "", "override data directory")
	}
}

// runBot wires the store, workflow engine, gateway, and optional metrics and
// reminder jobs, then blocks until a shutdown signal.
func runBot(_ *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(goutils.Env("RESOURCEBOT_CONFIG", runConfigPath))
	if err != nil {
		return err
	}
	if runDataDir != "" {
		cfg.DataDir = runDataDir
	}

	logger.Info("starting resourcebot",
		slog.String("data_dir", cfg.DataDir),
		slog.String("storage", cfg.Storage.StorageDriver()),
	)

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("closing store failed", slog.String("error", err.Error()))
		}
	}()

	// Signal-aware context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw := telegram.NewGateway(telegram.Config{
		BotToken:    cfg.BotToken,
		WebhookURL:  cfg.Gateway.WebhookURL,
		ListenAddr:  cfg.Gateway.ListenAddr,
		PollTimeout: cfg.Gateway.PollTimeout,
	}, logger)

	// Optional metrics exposition.
	var metrics *workflow.Metrics
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		obsServer := obs.NewServer(cfg.Metrics.Addr(), cfg.Metrics.MetricsPath(), logger)
		metrics = workflow.NewMetrics(obsServer.Registry)
		go obsServer.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = obsServer.Stop(shutdownCtx)
		}()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine := workflow.NewEngine(st, dialog.NewTracker(), gw, cfg.AdminID, metrics, rng, logger)
	gw.SetEngine(engine)

	// Optional pending-queue reminder.
	if cfg.Reminder != nil && cfg.Reminder.Enabled {
		rem := reminder.New(engine, gw, cfg.AdminID, cfg.Reminder.CronSchedule(), logger)
		cancelReminder, err := rem.Start(ctx)
		if err != nil {
			return err
		}
		defer cancelReminder()
	}

	if err := gw.Start(ctx); err != nil {
		return fmt.Errorf("telegram gateway: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return gw.Stop(shutdownCtx)
}

// openStore builds the configured store backend. The JSON backend gets the
// one-shot repair pass over both collection files before first use.
func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Storage.StorageDriver() {
	case "sqlite":
		return store.OpenSQLite(cfg.Storage.SQLitePath, logger)

	case "postgres":
		return store.OpenPostgres(cfg.Storage.PostgresDSN, logger)

	default:
		for _, collection := range []string{domain.CollectionPending, domain.CollectionApproved} {
			path := filepath.Join(cfg.DataDir, collection+".json")
			if err := store.RepairFile(path, logger); err != nil {
				logger.Warn("collection repair failed",
					slog.String("path", path),
					slog.String("error", err.Error()),
				)
			}
		}
		return store.NewJSONStore(cfg.DataDir, logger)
	}
}
