// Package logger builds the application slog.Logger. Libraries in this
// module take a *slog.Logger via options and default to a discard handler;
// this package is for the composition root that wants a real one.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logging settings.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// Format is "json" for aggregation or "text" for development.
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	// Name is attached as a "service" attribute when set.
	Name string `env:"LOG_SERVICE_NAME" envDefault:""`
}

// Option configures logger construction.
type Option func(*settings)

type settings struct {
	output io.Writer
	attrs  []slog.Attr
}

// WithOutput overrides the destination, mainly for tests.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.output = w
		}
	}
}

// WithAttrs attaches base attributes to every record.
func WithAttrs(attrs ...slog.Attr) Option {
	return func(s *settings) {
		s.attrs = append(s.attrs, attrs...)
	}
}

// New builds a logger from config.
func New(cfg Config, opts ...Option) *slog.Logger {
	s := settings{output: os.Stdout}
	for _, opt := range opts {
		opt(&s)
	}

	hopts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(s.output, hopts)
	} else {
		handler = slog.NewJSONHandler(s.output, hopts)
	}

	if cfg.Name != "" {
		s.attrs = append(s.attrs, slog.String("service", cfg.Name))
	}
	if len(s.attrs) > 0 {
		handler = handler.WithAttrs(s.attrs)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
