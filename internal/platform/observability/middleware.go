package observability

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bazzarna/storefront/internal/platform/auth"
	"github.com/bazzarna/storefront/internal/platform/httpx"
	"github.com/bazzarna/storefront/internal/platform/requestctx"
)

// InjectLoggerMiddleware stores the provided logger on the request context.
func InjectLoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestctx.WithLogger(r.Context(), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLoggerMiddleware logs request start and completion with structured fields suitable for Cloud Logging.
// Completion is logged at warn for 4xx and error for 5xx or panics.
func RequestLoggerMiddleware(projectID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			traceInfo, _ := requestctx.Trace(ctx)
			fields := []zap.Field{
				zap.String("request_id", middleware.GetReqID(ctx)),
				zap.String("method", SanitizeMethod(r.Method)),
				zap.String("path", SanitizeRoute(r.URL.Path)),
				zap.String("trace_id", traceInfo.TraceID),
			}
			if uid := identityUID(ctx); uid != "" {
				fields = append(fields, zap.String("user_id", uid))
			}
			if profileID := requestctx.ProfileID(ctx); profileID != "" {
				fields = append(fields, zap.String("profile_id", SanitizeID(profileID)))
			}
			if resource := loggingTraceResource(projectID, traceInfo); resource != "" {
				fields = append(fields, zap.String("logging.googleapis.com/trace", resource))
			}
			if ip := remoteIP(r); ip != "" {
				fields = append(fields, zap.String("remote_ip", ip))
			}
			logger := requestctx.Logger(ctx).With(fields...)
			ctx = requestctx.WithLogger(ctx, logger)
			r = r.WithContext(ctx)

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			logger.Info("request started")

			panicked := true
			defer func() {
				status := recorder.status
				if panicked && status < http.StatusInternalServerError {
					status = http.StatusInternalServerError
				}
				route := routePattern(r)
				annotateSpan(trace.SpanFromContext(ctx), route, status)

				done := []zap.Field{
					zap.String("route", SanitizeRoute(route)),
					zap.Int("status", status),
					zap.Duration("latency", time.Since(start)),
					zap.Int64("bytes", recorder.bytes),
				}
				switch {
				case status >= http.StatusInternalServerError:
					logger.Error("request completed", done...)
				case status >= http.StatusBadRequest:
					logger.Warn("request completed", done...)
				default:
					logger.Info("request completed", done...)
				}
			}()

			next.ServeHTTP(recorder, r)
			panicked = false
		})
	}
}

// RecoveryMiddleware captures panics, logs the stack trace, and returns a JSON error response.
func RecoveryMiddleware(fallback *zap.Logger) func(http.Handler) http.Handler {
	if fallback == nil {
		fallback = requestctx.NoopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				ctx := r.Context()
				logger := requestctx.Logger(ctx)
				if logger == requestctx.NoopLogger() {
					logger = fallback
				}
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func identityUID(ctx context.Context) string {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return ""
	}
	return SanitizeID(identity.UID)
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	if r.URL != nil && r.URL.Path != "" {
		return r.URL.Path
	}
	return "/"
}

func remoteIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return clip(addr, maxIDLen)
}

func loggingTraceResource(projectID string, info requestctx.TraceInfo) string {
	if projectID == "" {
		projectID = info.ProjectID
	}
	if projectID == "" || info.TraceID == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/traces/%s", projectID, info.TraceID)
}

func annotateSpan(span trace.Span, route string, status int) {
	if span == nil || !span.IsRecording() {
		return
	}
	span.SetAttributes(
		semconv.HTTPResponseStatusCode(status),
		semconv.HTTPRoute(SanitizeRoute(route)),
	)
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
		return
	}
	span.SetStatus(codes.Ok, "")
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.wroteHeader = true
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += int64(n)
	return n, err
}
