package observability

import (
	"context"
	"log/slog"
)

// slogProvider adapts a *slog.Logger to the Provider interface.
type slogProvider struct {
	logger *slog.Logger
}

// NewSlogProvider creates a Provider backed by the given slog logger.
// A nil logger falls back to slog.Default().
func NewSlogProvider(logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogProvider{logger: logger}
}

func (provider *slogProvider) Debug(msg string, attrs ...Attribute) {
	provider.log(slog.LevelDebug, msg, attrs)
}

func (provider *slogProvider) Info(msg string, attrs ...Attribute) {
	provider.log(slog.LevelInfo, msg, attrs)
}

func (provider *slogProvider) Warn(msg string, attrs ...Attribute) {
	provider.log(slog.LevelWarn, msg, attrs)
}

func (provider *slogProvider) Error(msg string, attrs ...Attribute) {
	provider.log(slog.LevelError, msg, attrs)
}

func (provider *slogProvider) log(level slog.Level, msg string, attrs []Attribute) {
	slogAttrs := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		slogAttrs = append(slogAttrs, slog.Any(attr.Key, attr.Value))
	}
	provider.logger.Log(context.Background(), level, msg, slogAttrs...)
}
