package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application"
	"github.com/Zhima-Mochi/minishop-checkout/internal/clock"
	domcheckout "github.com/Zhima-Mochi/minishop-checkout/internal/domain/checkout"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const useCasePlaceOrder = "checkout.place_order"

var _ application.UseCase[PlaceOrderInput, *domcheckout.Outcome] = (*PlaceOrderUseCase)(nil)

// Processor runs the checkout pipeline for an already-built order.
type Processor interface {
	ProcessCheckout(ctx context.Context, order *domorder.Order, p *domproduct.Product) (*domcheckout.Outcome, error)
}

type PlaceOrderInput struct {
	ProductID      string
	CustomerEmail  string
	IdempotencyKey string
}

// PlaceOrderUseCase turns a customer request into a checkout.
type PlaceOrderUseCase struct {
	products    domproduct.Repository
	orders      domorder.Repository
	processor   Processor
	idGenerator IDGenerator
	clock       clock.Clock
	idempotency IdempotencyStore

	ins application.Instruments
}

// NewPlaceOrderUseCase wires the use case. idempotency may be nil, which disables key handling.
func NewPlaceOrderUseCase(
	products domproduct.Repository,
	orders domorder.Repository,
	processor Processor,
	idGen IDGenerator,
	clk clock.Clock,
	idempotency IdempotencyStore,
	tel observability.Observability,
) *PlaceOrderUseCase {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &PlaceOrderUseCase{
		products:    products,
		orders:      orders,
		processor:   processor,
		idGenerator: idGen,
		clock:       clk,
		idempotency: idempotency,
		ins:         application.NewInstruments(tel, checkoutService),
	}
}

// Execute looks up the product, builds the order and checks it out. A missing or empty product
// is rejected as not available before any payment is attempted.
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, cmd PlaceOrderInput) (out *domcheckout.Outcome, err error) {
	logger := logctx.FromOr(ctx, uc.ins.Log).With(
		observability.F("use_case", useCasePlaceOrder),
		observability.F("product_id", cmd.ProductID),
	)

	ctx, span := uc.ins.Tracer.Start(ctx, spanPrefix+"PlaceOrder",
		attribute.String("use_case", useCasePlaceOrder),
		attribute.String("order.product_id", cmd.ProductID),
		attribute.Bool("idempotency.key_present", cmd.IdempotencyKey != ""),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	var orderID string

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		lat := uc.ins.Done(useCasePlaceOrder, outcome, start)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
			observability.F("checkout_outcome", out.Label()),
		}
		if orderID != "" {
			fields = append(fields, observability.F("order_id", orderID))
		}
		fields = append(fields, observability.TraceFields(ctx)...)
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	productID := strings.TrimSpace(cmd.ProductID)
	email := strings.TrimSpace(cmd.CustomerEmail)
	if productID == "" {
		// A request without a product is answered like an unknown product.
		outcome, statusText = "rejected", "PRODUCT_ID_REQUIRED"
		return domcheckout.Rejected(domcheckout.ReasonOutOfStock, domcheckout.MessageProductNotAvailable), nil
	}
	if email == "" {
		outcome, statusText = "error", "CUSTOMER_EMAIL_REQUIRED"
		return nil, newValidation("customer email is required")
	}

	key := strings.TrimSpace(cmd.IdempotencyKey)
	if key != "" && uc.idempotency != nil {
		existingID, claimed, cerr := uc.idempotency.Claim(ctx, key)
		switch {
		case cerr != nil:
			outcome, statusText = "error", "IDEMPOTENCY_CLAIM_FAILED"
			return nil, fmt.Errorf("checkout: idempotency claim: %w", cerr)
		case !claimed && existingID == "":
			outcome, statusText = "error", "IDEMPOTENCY_IN_FLIGHT"
			return nil, ErrIdempotencyInFlight
		case !claimed:
			existing, ferr := uc.orders.FindByID(ctx, existingID)
			if ferr != nil {
				outcome, statusText = "error", "IDEMPOTENT_REPLAY_FAILED"
				return nil, wrapRepositoryError(ferr)
			}
			orderID = existing.ID
			statusText = "IDEMPOTENT_REPLAY"
			span.AddEvent("order.idempotent_replay",
				trace.WithAttributes(attribute.String("order.id", orderID)),
			)
			return domcheckout.Confirmed(existing), nil
		}
		defer func() {
			uc.settleIdempotency(ctx, logger, key, out)
		}()
	}

	p, ferr := uc.products.FindByID(ctx, productID)
	if errors.Is(ferr, domproduct.ErrNotFound) || (ferr == nil && p.Quantity <= 0) {
		outcome, statusText = "rejected", "PRODUCT_NOT_AVAILABLE"
		return domcheckout.Rejected(domcheckout.ReasonOutOfStock, domcheckout.MessageProductNotAvailable), nil
	}
	if ferr != nil {
		outcome, statusText = "error", "PRODUCT_LOOKUP_FAILED"
		return nil, wrapRepositoryError(ferr)
	}

	orderID = uc.idGenerator.NewID()
	order, derr := domorder.New(orderID, p.ID, email, uc.clock.Now())
	if derr != nil {
		outcome, statusText = "error", "DOMAIN_CONSTRUCTION_FAILED"
		return nil, fmt.Errorf("%w: %w", ErrValidation, derr)
	}

	out, err = uc.processor.ProcessCheckout(ctx, order, p)
	if err != nil {
		outcome, statusText = "error", "CHECKOUT_FAILED"
		return nil, err
	}
	if !out.IsConfirmed() {
		outcome, statusText = "rejected", strings.ToUpper(string(out.Reason))
	}
	return out, nil
}

// settleIdempotency records the order for a confirmed checkout and frees the key otherwise,
// so a rejected or failed attempt can be retried with the same key.
func (uc *PlaceOrderUseCase) settleIdempotency(ctx context.Context, logger observability.Logger, key string, out *domcheckout.Outcome) {
	ctx = context.WithoutCancel(ctx)
	if out.IsConfirmed() {
		if err := uc.idempotency.Complete(ctx, key, out.Order.ID); err != nil {
			logger.Warn("idempotency_complete_failed", observability.F("error", err.Error()))
		}
		return
	}
	if err := uc.idempotency.Release(ctx, key); err != nil {
		logger.Warn("idempotency_release_failed", observability.F("error", err.Error()))
	}
}
