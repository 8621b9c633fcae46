// Package logging configures the process-wide slog logger: a text or JSON
// handler with a runtime-adjustable level and automatic redaction of
// credential-bearing fields, following the teacher's
// internal/observability package.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/masq"
)

// Config describes how to build the process logger, translated from the
// runtime TOML settings (internal/config).
type Config struct {
	// Format is "json" or "text". Unknown values default to "json".
	Format string
	// Level is one of "debug", "info", "warn", "error".
	Level string
	// AddSource includes the calling file:line in each record.
	AddSource bool
}

// level is the shared, runtime-adjustable log level, mirroring the
// teacher's GlobalLogLevel so SetLevel can change verbosity without
// rebuilding the handler (used by a future `setup`/`serve` debug toggle).
var level = &slog.LevelVar{}

// New builds a *slog.Logger writing to os.Stdout per cfg.
func New(cfg Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter builds a *slog.Logger writing to w, for tests and
// alternate output destinations.
func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	level.Set(parseLevel(cfg.Level))

	redact := credentialRedactor()
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			return redact(groups, a)
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// credentialRedactor masks the fields most likely to carry a secret in this
// domain: the OBS WebSocket password and the YouTube OAuth client
// secret/refresh/access tokens.
func credentialRedactor() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithFieldName("password"),
		masq.WithFieldName("Password"),
		masq.WithFieldName("client_secret"),
		masq.WithFieldName("ClientSecret"),
		masq.WithFieldName("refresh_token"),
		masq.WithFieldName("RefreshToken"),
		masq.WithFieldName("access_token"),
		masq.WithFieldName("AccessToken"),
		masq.WithFieldName("api_key"),
		masq.WithFieldName("ApiKey"),
	)
}

func parseLevel(level string) slog.Level {
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

// SetLevel changes the shared log level at runtime.
func SetLevel(l string) { level.Set(parseLevel(l)) }

// WithComponent tags logger with the component name it belongs to, so log
// lines from the auto-editor, uploader, etc. are easy to filter.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String("component", component))
}

type loggerContextKey struct{}

// ContextWithLogger attaches logger to ctx.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// FromContext returns the logger attached to ctx, or slog.Default() if none.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
