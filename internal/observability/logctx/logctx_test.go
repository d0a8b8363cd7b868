package logctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
)

type recordingLogger struct {
	observability.Logger
	fields []observability.Field
}

func (r *recordingLogger) With(fields ...observability.Field) observability.Logger {
	return &recordingLogger{Logger: observability.NopLogger(), fields: append(append([]observability.Field(nil), r.fields...), fields...)}
}

func TestFromOr(t *testing.T) {
	fallback := &recordingLogger{Logger: observability.NopLogger()}
	assert.Same(t, fallback, FromOr(context.Background(), fallback))
	assert.NotNil(t, FromOr(context.Background(), nil))

	stored := &recordingLogger{Logger: observability.NopLogger()}
	ctx := With(context.Background(), stored)
	assert.Same(t, stored, FromOr(ctx, fallback))
}

func TestEnrich(t *testing.T) {
	base := &recordingLogger{Logger: observability.NopLogger()}

	ctx, logger := Enrich(context.Background(), base, observability.F("order_id", "o-1"))

	rec, ok := logger.(*recordingLogger)
	if assert.True(t, ok) {
		assert.Equal(t, []observability.Field{observability.F("order_id", "o-1")}, rec.fields)
	}
	assert.Same(t, logger, From(ctx))
}
