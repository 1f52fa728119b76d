package wikiboot

import (
	"context"
	"log/slog"
	"time"
)

// LoadLogEvent describes a bootstrap step for logging.
type LoadLogEvent struct {
	Step     string
	Key      string
	Duration time.Duration
	Err      error
}

// Logger records bootstrap events.
type Logger interface {
	LogLoad(LoadLogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LoadLogEvent)

// LogLoad implements Logger.
func (f LoggerFunc) LogLoad(event LoadLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogLoad(LoadLogEvent) {}

type slogLogger struct {
	logger *slog.Logger
}

// SlogLogger adapts a slog.Logger. Failed steps log at warn level, the rest at
// debug.
func SlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return slogLogger{logger: logger}
}

func (l slogLogger) LogLoad(event LoadLogEvent) {
	attrs := []slog.Attr{
		slog.String("step", event.Step),
		slog.String("key", event.Key),
		slog.Duration("duration", event.Duration),
	}
	level := slog.LevelDebug
	if event.Err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	l.logger.LogAttrs(context.Background(), level, "wikiboot "+event.Step, attrs...)
}

// WithLogger attaches a logger. A nil logger disables logging.
func WithLogger(logger Logger) Option {
	return func(cfg *bootConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}
