// Package requestctx carries per-request values (logger, trace, browser profile and
// negotiated locale) through context.Context. Readers tolerate a nil context.
package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type (
	loggerKey  struct{}
	traceKey   struct{}
	profileKey struct{}
	localeKey  struct{}
)

var noopLogger = zap.NewNop()

// TraceInfo is the Cloud Trace span bound to a request.
type TraceInfo struct {
	TraceID   string
	SpanID    string
	Sampled   bool
	ProjectID string
}

func with(ctx context.Context, key, value any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

func lookup[T any](ctx context.Context, key any) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok
}

// WithLogger attaches logger. A nil logger is stored as the shared no-op logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = noopLogger
	}
	return with(ctx, loggerKey{}, logger)
}

// Logger returns the request logger, or NoopLogger when none is attached.
func Logger(ctx context.Context) *zap.Logger {
	if logger, ok := lookup[*zap.Logger](ctx, loggerKey{}); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger is the shared logger returned when nothing is attached. Callers compare
// against it to detect a missing logger.
func NoopLogger() *zap.Logger { return noopLogger }

func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	return with(ctx, traceKey{}, info)
}

func Trace(ctx context.Context) (TraceInfo, bool) {
	return lookup[TraceInfo](ctx, traceKey{})
}

// TraceID returns the trace id, or "" outside a traced request.
func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}

// WithProfileID records the anonymous browser profile bound to the request.
func WithProfileID(ctx context.Context, profileID string) context.Context {
	return with(ctx, profileKey{}, profileID)
}

func ProfileID(ctx context.Context) string {
	id, _ := lookup[string](ctx, profileKey{})
	return id
}

// WithLocale records the negotiated locale.
func WithLocale(ctx context.Context, locale string) context.Context {
	return with(ctx, localeKey{}, locale)
}

func Locale(ctx context.Context) string {
	locale, _ := lookup[string](ctx, localeKey{})
	return locale
}
