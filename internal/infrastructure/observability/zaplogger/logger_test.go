package zaplogger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
)

func TestLogger_WritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := New(zap.New(core), observability.F("service", "checkout"))

	l.With(observability.F("order_id", "o-1")).Warn("event_publish_failed",
		observability.F("error", errors.New("broker down")),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "event_publish_failed", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "checkout", ctx["service"])
	assert.Equal(t, "o-1", ctx["order_id"])
	assert.Equal(t, "broker down", ctx["error"])
}
