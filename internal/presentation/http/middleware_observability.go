package httppresentation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// withTrace continues the caller's W3C trace context and opens a server span.
// The span is renamed to the matched route once chi has resolved it.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	tracer := otel.Tracer("minishop.http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := tracer.Start(parentCtx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		rec := newStatusRecorder(w)
		r = r.WithContext(ctx)
		next.ServeHTTP(rec, r)

		route := routePattern(r)
		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", rec.status),
		)
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
	})
}

// withRequestLogger puts a request-scoped logger on the context and echoes X-Request-ID.
func (h *Handler) withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(headerRequestID, rid)

		fields := []observability.Field{observability.F("request_id", rid)}
		fields = append(fields, observability.TraceFields(r.Context())...)
		ctx := logctx.With(r.Context(), logctx.FromOr(r.Context(), h.log).With(fields...))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withHTTPMetrics records RED metrics against instruments registered at startup.
func (h *Handler) withHTTPMetrics(next http.Handler) http.Handler {
	requests := h.tel.Metrics().Counter(observability.MHTTPRequests)
	duration := h.tel.Metrics().Histogram(observability.MHTTPRequestDuration)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		labels := []observability.Label{
			observability.L("method", r.Method),
			observability.L("route", routePattern(r)),
			observability.L("status", strconv.Itoa(rec.status)),
		}
		requests.Add(1, labels...)
		duration.Observe(time.Since(start).Seconds(), labels...)
	})
}

// withAccessLog writes a single access log after the handler completes.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routePattern(r)),
			observability.F("path", r.URL.Path),
			observability.F("status", rec.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// routePattern returns the matched chi template, keeping labels low-cardinality.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return routeUnknown
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return routeUnknown
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (w *statusRecorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusRecorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }
