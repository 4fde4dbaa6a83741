package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/phrazzld/taskroster-api/internal/config"
	"github.com/phrazzld/taskroster-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

// sourceMigrationsDir is where new migration files are created, relative
// to the repository root.
var sourceMigrationsDir = filepath.Join("internal", "platform", "postgres", postgres.MigrationsDir)

// handleMigrations runs a goose command and returns. "create" writes a new
// SQL file into the source tree; every other command runs against the
// configured database using the migrations embedded in the binary.
func handleMigrations(cfg *config.Config, logger *slog.Logger, command, name string) error {
	logger.Info("executing migrations", "command", command)

	if command == "create" {
		if name == "" {
			return fmt.Errorf("migration name is required for create (use -name)")
		}
		if err := os.MkdirAll(sourceMigrationsDir, 0o755); err != nil {
			return fmt.Errorf("failed to create migrations directory: %w", err)
		}
		if err := goose.Create(nil, sourceMigrationsDir, name, "sql"); err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
		return nil
	}

	db, err := setupAppDatabase(context.Background(), cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if err := postgres.Migrate(db, command); err != nil {
		return err
	}

	logger.Info("migrations finished", "command", command)
	return nil
}
