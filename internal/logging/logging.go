package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Development bool
	// File, when set, receives a JSON copy of every record and is rotated
	// by size.
	File string
}

// New returns a tint logger for development and a JSON logger otherwise.
// The returned closer flushes the log file, if any.
func New(w io.Writer, opts Options) (*slog.Logger, io.Closer) {
	level := slog.LevelInfo
	if opts.Development {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if opts.Development {
		handler = tint.NewHandler(w, &tint.Options{Level: level})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}

	if opts.File == "" {
		return slog.New(handler), nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		Compress:   true,
	}
	handler = fanout{
		handler,
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}),
	}
	return slog.New(handler), file
}

func Stderr(opts Options) (*slog.Logger, io.Closer) {
	return New(os.Stderr, opts)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
