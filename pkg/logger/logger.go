// Package logger builds the structured request logger shared by the HTTP
// layer and the use cases.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-chi/httplog/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level      string
	JSON       bool
	OutputPath string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// New returns an httplog logger writing to stdout, and additionally to a
// rotated file when OutputPath is set.
func New(serviceName string, opts Options) (*httplog.Logger, error) {
	const op = "logger.New"

	var w io.Writer = os.Stdout

	if opts.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
			return nil, fmt.Errorf("%s: failed to create log directory: %w", op, err)
		}

		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.OutputPath,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		})
	}

	return httplog.NewLogger(serviceName, httplog.Options{
		LogLevel: ParseLevel(opts.Level),
		JSON:     opts.JSON,
		Concise:  !opts.JSON,
		Writer:   w,
	}), nil
}

func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
