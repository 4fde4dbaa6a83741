// Package main implements the entry point for the taskroster API server,
// which lets administrators assign tasks to staff and notifies assignees
// over WhatsApp.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/taskroster-api/internal/config"
	"github.com/phrazzld/taskroster-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "Run a migration command (up, down, status, version, create) and exit")
	migrationName := flag.String("name", "", "Name for a new migration (used with -migrate=create)")
	verbose := flag.Bool("verbose", false, "Log at debug level regardless of configuration")
	flag.Parse()

	if err := run(*migrateCmd, *migrationName, *verbose); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(migrateCmd, migrationName string, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		cfg.Server.LogLevel = "debug"
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"notifications_enabled", cfg.Notify.Enabled,
		"bootstrap_admin", cfg.Bootstrap.Enabled())

	if migrateCmd != "" {
		return handleMigrations(cfg, log, migrateCmd, migrationName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
