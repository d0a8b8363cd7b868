package notification

import (
	"context"

	appnotification "github.com/Zhima-Mochi/minishop-checkout/internal/application/notification"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
)

// LogMailer records confirmations in the log instead of sending mail.
type LogMailer struct {
	log observability.Logger
}

func NewLogMailer(logger observability.Logger) *LogMailer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &LogMailer{log: logger.With(observability.F("component", "log_mailer"))}
}

func (m *LogMailer) SendOrderConfirmation(ctx context.Context, email string, c appnotification.Confirmation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logctx.FromOr(ctx, m.log).Info("order_confirmation_sent",
		observability.F("to", email),
		observability.F("order_id", c.OrderID),
		observability.F("product_id", c.ProductID),
	)
	return nil
}
