package observability

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bazzarna/storefront/internal/platform/requestctx"
)

// EventLogger is the func-typed logger accepted by services.
type EventLogger func(ctx context.Context, event string, fields map[string]any)

// cloudSeverity maps zap levels onto Cloud Logging severities.
var cloudSeverity = map[zapcore.Level]string{
	zapcore.DebugLevel:  "DEBUG",
	zapcore.InfoLevel:   "INFO",
	zapcore.WarnLevel:   "WARNING",
	zapcore.ErrorLevel:  "ERROR",
	zapcore.DPanicLevel: "CRITICAL",
	zapcore.PanicLevel:  "ALERT",
	zapcore.FatalLevel:  "EMERGENCY",
}

// NewLogger builds the JSON logger at the LOG_LEVEL level.
func NewLogger() (*zap.Logger, error) {
	return NewLoggerWithLevel(os.Getenv("LOG_LEVEL"))
}

// NewLoggerWithLevel builds a JSON logger in the Cloud Logging structured format. Blank or
// unknown levels fall back to info.
func NewLoggerWithLevel(raw string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(strings.TrimSpace(raw)); err == nil && strings.TrimSpace(raw) != "" {
		level = parsed
	}

	encoder := zap.NewProductionEncoderConfig()
	encoder.MessageKey = "message"
	encoder.TimeKey = "timestamp"
	encoder.LevelKey = "severity"
	encoder.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encoder.EncodeDuration = zapcore.StringDurationEncoder
	encoder.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(cloudSeverity[l])
	}

	return zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          "json",
		EncoderConfig:     encoder,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}.Build()
}

// WithLogger injects the logger into the provided context.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return requestctx.WithLogger(ctx, logger)
}

// NewEventLogger adapts zap to EventLogger. Events ending in "_failed" or "_error" log at
// warn, the rest at debug. A request logger on ctx takes precedence over fallback and is
// renamed to match it.
func NewEventLogger(fallback *zap.Logger, message string) EventLogger {
	if fallback == nil {
		fallback = zap.NewNop()
	}
	return func(ctx context.Context, event string, fields map[string]any) {
		logger := fallback
		if scoped := requestctx.Logger(ctx); scoped != requestctx.NoopLogger() {
			logger = scoped.Named(fallback.Name())
		}

		level := zapcore.DebugLevel
		if strings.HasSuffix(event, "_failed") || strings.HasSuffix(event, "_error") {
			level = zapcore.WarnLevel
		}
		ce := logger.Check(level, message)
		if ce == nil {
			return
		}
		ce.Write(eventFields(event, fields)...)
	}
}

func eventFields(event string, fields map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	out = append(out, zap.String("event", event))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
