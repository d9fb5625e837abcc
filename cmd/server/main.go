package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vancomm/minesweeper/internal/app"
	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/logging"
	"github.com/vancomm/minesweeper/internal/mines"
)

func main() {
	logger, logFile := logging.Stderr(logging.Options{
		Development: config.Development(),
		File:        config.LogFile(),
	})
	defer logFile.Close()
	mines.Log = logger.With(slog.String("pkg", "mines"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := app.New(logger).Start(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", slog.Any("error", err))
		logFile.Close()
		os.Exit(1)
	}
	logger.Info("server stopped")
}
