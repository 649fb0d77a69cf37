package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"finnkey-backend/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 10
	maxLogBackups = 5
	maxLogAgeDays = 14
)

// Init configures slog as the process-wide logger. Logs go to stdout unless
// cfg.LogFile is set, in which case they are written to a rotating file.
func Init(cfg *config.Config) (*slog.Logger, error) {
	level := parseLogLevel(cfg.LogLevel)
	handlerOptions := &slog.HandlerOptions{Level: level}

	out, err := newWriter(cfg.LogFile)
	if err != nil {
		logger := slog.New(newHandler(cfg.LogFormat, os.Stdout, handlerOptions))
		slog.SetDefault(logger)
		return logger, err
	}

	logger := slog.New(newHandler(cfg.LogFormat, out, handlerOptions)).With("env", cfg.Env)
	slog.SetDefault(logger)
	return logger, nil
}

func newWriter(logFile string) (io.Writer, error) {
	logPath := strings.TrimSpace(logFile)
	if logPath == "" {
		return os.Stdout, nil
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newHandler(format string, out io.Writer, opts *slog.HandlerOptions) slog.Handler {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		return slog.NewTextHandler(out, opts)
	default:
		return slog.NewJSONHandler(out, opts)
	}
}
