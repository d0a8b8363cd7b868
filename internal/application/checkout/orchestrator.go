package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application"
	domcheckout "github.com/Zhima-Mochi/minishop-checkout/internal/domain/checkout"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	checkoutService          = "checkout-service"
	useCaseProcessCheckout   = "checkout.process"
	spanPrefix               = "UC."
	DefaultSideEffectTimeout = 2 * time.Second

	peerPaymentGateway = "payment_gateway"
	peerNotification   = "notification"
	peerEvents         = "outbox"

	endpointCharge       = "charge"
	endpointConfirmation = "order.confirmation"
	endpointOrderCreated = "order.created"

	effectNotification = "notification"
	effectEvent        = "event"
)

// Orchestrator runs one checkout: stock check, reservation, charge, commit, then the
// best-effort confirmation and order.created event.
type Orchestrator struct {
	stock    StockAvailability
	gateway  dompayment.Gateway
	notifier NotificationSink
	events   EventPublisher
	ledger   Ledger

	sideEffectTimeout time.Duration

	ins                application.Instruments
	outcomeCounter     observability.Counter // checkout_outcomes_total{outcome,reason}
	sideEffectFailures observability.Counter // checkout_side_effect_failures_total{effect}
}

type Option func(*Orchestrator)

// WithSideEffectTimeout bounds each notification and event publish.
func WithSideEffectTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.sideEffectTimeout = d
		}
	}
}

func NewOrchestrator(
	stock StockAvailability,
	gateway dompayment.Gateway,
	notifier NotificationSink,
	events EventPublisher,
	ledger Ledger,
	tel observability.Observability,
	opts ...Option,
) *Orchestrator {
	if tel == nil {
		tel = observability.Nop()
	}
	o := &Orchestrator{
		stock:              stock,
		gateway:            gateway,
		notifier:           notifier,
		events:             events,
		ledger:             ledger,
		sideEffectTimeout:  DefaultSideEffectTimeout,
		ins:                application.NewInstruments(tel, checkoutService),
		outcomeCounter:     tel.Metrics().Counter(observability.MCheckoutOutcomes),
		sideEffectFailures: tel.Metrics().Counter(observability.MCheckoutSideEffectFailed),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ProcessCheckout takes one unit of p for order. Business rejections come back as an Outcome;
// the error return is reserved for faults. Nothing is mutated unless the charge succeeds, and
// once the commit starts it is no longer subject to ctx cancellation.
func (uc *Orchestrator) ProcessCheckout(ctx context.Context, order *domorder.Order, p *domproduct.Product) (out *domcheckout.Outcome, err error) {
	if order == nil {
		return nil, newValidation("order is required")
	}

	logger := logctx.FromOr(ctx, uc.ins.Log).With(
		observability.F("use_case", useCaseProcessCheckout),
		observability.F("order_id", order.ID),
		observability.F("product_id", order.ProductID),
	)

	ctx, span := uc.ins.Tracer.Start(ctx, spanPrefix+"ProcessCheckout",
		attribute.String("use_case", useCaseProcessCheckout),
		attribute.String("order.id", order.ID),
		attribute.String("order.product_id", order.ProductID),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	var sideEffectErrs []string

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		lat := uc.ins.Done(useCaseProcessCheckout, outcome, start)

		kind, reason := "error", ""
		if out != nil {
			kind, reason = string(out.Kind), string(out.Reason)
		}
		if uc.outcomeCounter != nil {
			uc.outcomeCounter.Add(1,
				observability.L("outcome", kind),
				observability.L("reason", reason),
			)
		}

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
			observability.F("checkout_outcome", out.Label()),
		}
		fields = append(fields, observability.TraceFields(ctx)...)
		if len(sideEffectErrs) > 0 {
			fields = append(fields, observability.F("side_effect_errors", sideEffectErrs))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	reject := func(status string, reason domcheckout.Reason, msg string) *domcheckout.Outcome {
		outcome, statusText = "rejected", status
		span.SetAttributes(attribute.String("checkout.reason", string(reason)))
		return domcheckout.Rejected(reason, msg)
	}

	if !p.InStock(1) {
		return reject("OUT_OF_STOCK", domcheckout.ReasonOutOfStock, domcheckout.MessageNoStock), nil
	}
	span.SetAttributes(attribute.String("product.sku", p.SKU))

	available, serr := uc.stock.HasStock(ctx, p.SKU, 1)
	if serr != nil {
		outcome, statusText = "error", "STOCK_CHECK_FAILED"
		return nil, fmt.Errorf("%w: %w", ErrStockCheck, serr)
	}
	if !available {
		return reject("OUT_OF_STOCK", domcheckout.ReasonOutOfStock, domcheckout.MessageNoStock), nil
	}

	if rerr := uc.stock.Reserve(ctx, p.SKU, 1); rerr != nil {
		if errors.Is(rerr, domproduct.ErrInsufficientStock) {
			return reject("RESERVE_REJECTED", domcheckout.ReasonOutOfStock, domcheckout.MessageNoStock), nil
		}
		outcome, statusText = "error", "RESERVE_FAILED"
		return nil, fmt.Errorf("%w: reserve: %w", ErrStockCheck, rerr)
	}
	span.AddEvent("stock.reserved")

	result, cerr := uc.charge(ctx, order)
	if cerr != nil {
		logger.Warn("payment_charge_failed",
			observability.F("error", cerr.Error()),
		)
		return reject("PAYMENT_DECLINED", domcheckout.ReasonPaymentDeclined, dompayment.DefaultDeclineMessage), nil
	}
	if !result.Success {
		return reject("PAYMENT_DECLINED", domcheckout.ReasonPaymentDeclined, result.DeclineMessage()), nil
	}
	span.AddEvent("payment.authorized")

	if cerr := ctx.Err(); cerr != nil {
		outcome, statusText = "error", "CONTEXT_CANCELED"
		return nil, cerr
	}

	commitCtx := context.WithoutCancel(ctx)
	if lerr := uc.ledger.CommitCheckout(commitCtx, p.ID, order); lerr != nil {
		if errors.Is(lerr, domproduct.ErrInsufficientStock) {
			logger.Error("payment_authorized_without_order",
				observability.F("sku", p.SKU),
			)
			return reject("STOCK_LOST_AT_COMMIT", domcheckout.ReasonOutOfStock, domcheckout.MessageNoStock), nil
		}
		outcome, statusText = "error", "LEDGER_COMMIT_FAILED"
		return nil, wrapRepositoryError(lerr)
	}
	span.AddEvent("order.committed", trace.WithAttributes(attribute.String("order.id", order.ID)))

	if nerr := uc.ins.CallExternal(commitCtx, uc.sideEffectTimeout, peerNotification, endpointConfirmation, func(ctx context.Context) error {
		return uc.notifier.SendConfirmation(ctx, order.CustomerEmail, order)
	}); nerr != nil {
		sideEffectErrs = append(sideEffectErrs, uc.sideEffectFailed(logger, effectNotification, nerr))
	}

	if eerr := uc.ins.CallExternal(commitCtx, uc.sideEffectTimeout, peerEvents, endpointOrderCreated, func(ctx context.Context) error {
		return uc.events.PublishOrderCreated(ctx, order)
	}); eerr != nil {
		sideEffectErrs = append(sideEffectErrs, uc.sideEffectFailed(logger, effectEvent, eerr))
	}

	return domcheckout.Confirmed(order), nil
}

func (uc *Orchestrator) charge(ctx context.Context, order *domorder.Order) (dompayment.Result, error) {
	start := time.Now()
	result, err := uc.gateway.Charge(ctx, order)
	outcome := string(result.Status())
	if err != nil {
		outcome = "error"
	}
	uc.ins.ObserveExternal(peerPaymentGateway, endpointCharge, outcome, start)
	return result, err
}

func (uc *Orchestrator) sideEffectFailed(logger observability.Logger, effect string, err error) string {
	if uc.sideEffectFailures != nil {
		uc.sideEffectFailures.Add(1, observability.L("effect", effect))
	}
	logger.Warn("checkout_side_effect_failed",
		observability.F("effect", effect),
		observability.F("error", err.Error()),
	)
	return effect + ": " + err.Error()
}
