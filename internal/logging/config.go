package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	BackendSlog = "slog"
	BackendZap  = "zap"

	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config selects the logging backend and its output.
type Config struct {
	Backend string // "slog" (default) or "zap"
	Level   string // debug, info, warn, error
	Format  string // "json" or "console"
}

// New builds a Logger from cfg. slog writes to w; zap writes to stderr
// through its own sinks.
func New(cfg Config, w io.Writer) (Logger, error) {
	if w == nil {
		w = os.Stdout
	}
	switch strings.ToLower(cfg.Backend) {
	case "", BackendSlog:
		return newSlog(cfg, w)
	case BackendZap:
		return newZap(cfg)
	default:
		return nil, fmt.Errorf("unknown log backend %q", cfg.Backend)
	}
}

func newSlog(cfg Config, w io.Writer) (Logger, error) {
	var level slog.Level
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == FormatConsole {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return NewSlogLogger(slog.New(h)), nil
}

func newZap(cfg Config) (Logger, error) {
	var zc zap.Config
	if cfg.Level == "debug" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}

	if cfg.Format == FormatConsole {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	} else {
		zc.Encoding = "json"
	}
	zc.EncoderConfig.LevelKey = "level"
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.MessageKey = "message"

	l, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return NewZapLogger(l), nil
}
