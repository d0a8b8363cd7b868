package workerpresentation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
)

type fieldLogger struct {
	observability.Logger
	fields []observability.Field
}

func (l *fieldLogger) With(fields ...observability.Field) observability.Logger {
	return &fieldLogger{Logger: l.Logger, fields: append(append([]observability.Field(nil), l.fields...), fields...)}
}

func fieldMap(l observability.Logger) map[string]any {
	out := map[string]any{}
	for _, f := range l.(*fieldLogger).fields {
		out[f.Key] = f.Value
	}
	return out
}

func TestWithEventContext(t *testing.T) {
	base := &fieldLogger{Logger: observability.NopLogger()}

	ctx, logger := WithEventContext(context.Background(), base, "order.confirmation_requested",
		map[string]string{"event_id": "evt-1", "order_id": "o-1", "empty": ""})

	fields := fieldMap(logger)
	assert.Equal(t, "evt-1", fields["event_id"])
	assert.Equal(t, "order.confirmation_requested", fields["event"])
	assert.Equal(t, "o-1", fields["order_id"])
	assert.NotContains(t, fields, "empty")
	assert.NotContains(t, fields, "trace_id")
	require.Same(t, logger, logctx.From(ctx))
}

func TestWithEventContext_GeneratesEventID(t *testing.T) {
	_, logger := WithEventContext(context.Background(), &fieldLogger{Logger: observability.NopLogger()}, "x", nil)
	assert.NotEmpty(t, fieldMap(logger)["event_id"])
}
