package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/bazzarna/storefront/internal/platform/requestctx"
)

const cloudTraceHeader = "X-Cloud-Trace-Context"

var (
	tracer     = otel.Tracer("github.com/bazzarna/storefront/internal/platform/observability")
	propagator = propagation.TraceContext{}
)

// TraceMiddleware continues an inbound trace (W3C traceparent first, then X-Cloud-Trace-Context),
// starts a server span, and stores trace metadata on the request context.
func TraceMiddleware(projectID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			if !trace.SpanContextFromContext(ctx).IsValid() {
				if remote, ok := parseCloudTraceHeader(r.Header.Get(cloudTraceHeader)); ok {
					ctx = trace.ContextWithRemoteSpanContext(ctx, remote)
				}
			}

			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(requestAttributes(r)...),
			)
			defer span.End()

			sc := span.SpanContext()
			info := requestctx.TraceInfo{
				TraceID:   sc.TraceID().String(),
				SpanID:    sc.SpanID().String(),
				Sampled:   sc.IsSampled(),
				ProjectID: projectID,
			}
			if sc.IsValid() {
				w.Header().Set(cloudTraceHeader, formatCloudTraceHeader(info))
			}

			next.ServeHTTP(w, r.WithContext(requestctx.WithTrace(ctx, info)))
		})
	}
}

// parseCloudTraceHeader decodes "TRACE_ID/SPAN_ID;o=OPTIONS" where SPAN_ID is decimal.
func parseCloudTraceHeader(header string) (trace.SpanContext, bool) {
	header = strings.TrimSpace(header)
	traceHex, rest, found := strings.Cut(header, "/")
	if !found || len(traceHex) != 32 {
		return trace.SpanContext{}, false
	}
	traceID, err := trace.TraceIDFromHex(traceHex)
	if err != nil {
		return trace.SpanContext{}, false
	}
	spanPart, options, _ := strings.Cut(rest, ";")
	spanNum, err := strconv.ParseUint(strings.TrimSpace(spanPart), 10, 64)
	if err != nil || spanNum == 0 {
		return trace.SpanContext{}, false
	}
	spanID, err := trace.SpanIDFromHex(fmt.Sprintf("%016x", spanNum))
	if err != nil {
		return trace.SpanContext{}, false
	}
	var flags trace.TraceFlags
	if strings.TrimSpace(options) == "o=1" {
		flags = trace.FlagsSampled
	}
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: flags,
		Remote:     true,
	}), true
}

func formatCloudTraceHeader(info requestctx.TraceInfo) string {
	spanNum, err := strconv.ParseUint(info.SpanID, 16, 64)
	if err != nil {
		return ""
	}
	sampled := 0
	if info.Sampled {
		sampled = 1
	}
	return fmt.Sprintf("%s/%d;o=%d", info.TraceID, spanNum, sampled)
}

func requestAttributes(r *http.Request) []attribute.KeyValue {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", r.Method),
		attribute.String("url.scheme", scheme),
		attribute.String("url.path", r.URL.Path),
	}
	if r.Host != "" {
		attrs = append(attrs, attribute.String("server.address", r.Host))
	}
	if ua := r.UserAgent(); ua != "" {
		attrs = append(attrs, attribute.String("user_agent.original", ua))
	}
	return attrs
}
