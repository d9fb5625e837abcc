package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/database"
	"github.com/vancomm/minesweeper/internal/logging"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration instead of applying them")
	flag.Parse()

	logger, logFile := logging.Stderr(logging.Options{Development: config.Development()})
	defer logFile.Close()

	url, err := config.DbURL()
	if err != nil {
		logger.Error("failed to read db config", slog.Any("error", err))
		os.Exit(1)
	}

	if *down {
		migrator, err := database.NewMigrator(url)
		if err != nil {
			logger.Error("failed to create migrator", slog.Any("error", err))
			os.Exit(1)
		}
		defer migrator.Close()
		if err := migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Error("failed to roll back db", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("rolled back all migrations")
		return
	}

	migrator, err := database.Migrate(url)
	if err != nil {
		logger.Error("failed to migrate db", slog.Any("error", err))
		os.Exit(1)
	}
	defer migrator.Close()

	version, dirty, err := migrator.Version()
	if err != nil {
		logger.Error("failed to check migration version", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migration successful", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
}
