package main

import (
	"context"
	"errors"
	"fmt"
	"hash/maphash"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vancomm/minesweeper/internal/logging"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/records"
	"github.com/vancomm/minesweeper/internal/tui"
)

func defaultRecordsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "minesweeper-records.db"
	}
	return filepath.Join(dir, "minesweeper", "records.db")
}

// loadConfig merges flags, MINESWEEPER_* env variables and an optional
// config file, in that order of precedence.
func loadConfig(args []string) (*viper.Viper, error) {
	flags := pflag.NewFlagSet("minesweeper", pflag.ContinueOnError)
	flags.String("level", "junior", "difficulty: junior, middle or senior")
	flags.String("records", defaultRecordsPath(), "sqlite file with best times, empty to disable")
	flags.String("log-file", "", "write debug logs to this file")
	flags.Duration("tick", time.Second, "timer refresh interval")
	flags.String("config", "", "optional config file (yaml, toml or json)")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("minesweeper")
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config %s: %w", path, err)
		}
	}
	return v, nil
}

func openRecords(path string) (*records.Store, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return records.Open(path)
}

func run() error {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	logger, logFile := logging.New(io.Discard, logging.Options{
		Development: cfg.GetString("log-file") != "",
		File:        cfg.GetString("log-file"),
	})
	defer logFile.Close()
	mines.Log = logger

	store, err := openRecords(cfg.GetString("records"))
	if err != nil {
		return fmt.Errorf("unable to open records: %w", err)
	}
	var recorder tui.Recorder
	if store != nil {
		defer store.Close()
		recorder = store
	}

	rnd := rand.New(rand.NewPCG(new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64()))
	model, err := tui.NewModel(logger, cfg.GetString("level"), rnd, recorder)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err = tui.Run(ctx, screen, model, cfg.GetDuration("tick"))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "minesweeper:", err)
		os.Exit(1)
	}
}
