package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	workerpresentation "github.com/Zhima-Mochi/minishop-checkout/internal/presentation/worker"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	workerService       = "notification_worker"
	useCaseConfirmation = "notification.order_confirmation"
	spanPrefix          = "UC."
	peerMailer          = "mailer"
	defaultSendTimeout  = 5 * time.Second
)

// Confirmation is what the customer is told about their order.
type Confirmation struct {
	OrderID   string
	ProductID string
}

type Mailer interface {
	SendOrderConfirmation(ctx context.Context, email string, c Confirmation) error
}

// Worker delivers queued order confirmations.
type Worker struct {
	subscriber domoutbox.Subscriber
	mailer     Mailer
	ins        application.Instruments
}

func NewWorker(subscriber domoutbox.Subscriber, mailer Mailer, tel observability.Observability) *Worker {
	return &Worker{
		subscriber: subscriber,
		mailer:     mailer,
		ins:        application.NewInstruments(tel, workerService),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.mailer == nil {
		return
	}
	w.subscriber.Subscribe(domorder.ConfirmationRequestedEvent{}.EventName(), w.Handle)
}

// Handle sends one confirmation. Unrelated events are ignored.
func (w *Worker) Handle(ctx context.Context, e domoutbox.Event) (err error) {
	evt, ok := e.(domorder.ConfirmationRequestedEvent)
	if !ok {
		w.ins.Done(useCaseConfirmation, "ignored", time.Now())
		return nil
	}

	ctx, span := w.ins.Tracer.Start(ctx, spanPrefix+"SendOrderConfirmation",
		attribute.String("use_case", useCaseConfirmation),
		attribute.String("event", e.EventName()),
		attribute.String("order.id", evt.OrderID),
	)
	ctx, logger := workerpresentation.WithEventContext(ctx, w.ins.Log, e.EventName(), map[string]string{
		"use_case": useCaseConfirmation,
		"order_id": evt.OrderID,
	})
	start := time.Now()
	outcome, status := "success", "OK"

	defer func() {
		lat := w.ins.Done(useCaseConfirmation, outcome, start)
		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", status),
			observability.F("latency_seconds", lat),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
			span.RecordError(err)
			span.SetStatus(codes.Error, status)
		} else {
			span.SetStatus(codes.Ok, status)
		}
		span.End()
		logger.Info("use_case_done", fields...)
	}()

	if evt.Email == "" {
		outcome, status = "error", "EMAIL_MISSING"
		return fmt.Errorf("notification: order %s has no email", evt.OrderID)
	}

	err = w.ins.CallExternal(ctx, defaultSendTimeout, peerMailer, "order_confirmation", func(ctx context.Context) error {
		return w.mailer.SendOrderConfirmation(ctx, evt.Email, Confirmation{OrderID: evt.OrderID, ProductID: evt.ProductID})
	})
	if err != nil {
		outcome, status = "error", "MAIL_SEND_FAILED"
		return fmt.Errorf("notification: send: %w", err)
	}
	return nil
}
