package workerpresentation

import (
	"context"

	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"github.com/google/uuid"
)

// WithEventContext injects a per-event logger for background handlers: event_id (generated when
// attrs has none), the event name, trace/span ids when ctx carries a span, plus caller-provided
// low-cardinality attributes.
func WithEventContext(
	ctx context.Context,
	base observability.Logger,
	eventName string,
	attrs map[string]string,
) (context.Context, observability.Logger) {
	base = logctx.FromOr(ctx, base)

	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}

	fields := make([]observability.Field, 0, 4+len(attrs))
	fields = append(fields,
		observability.F("event_id", evtID),
		observability.F("event", eventName),
	)
	fields = append(fields, observability.TraceFields(ctx)...)
	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	logger := base.With(fields...)
	return logctx.With(ctx, logger), logger
}
