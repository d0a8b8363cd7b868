package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application"
	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	inventoryService   = "inventory-service"
	useCaseAddProduct  = "inventory.add_product"
	useCaseUpdateStock = "inventory.update_stock"
	useCaseGetProduct  = "inventory.get_product"
	spanPrefix         = "UC."

	maxNameLength = 100
	invalidChars  = "!@#$%"
	priceScale    = 2
)

// Validation messages, in the order the rules are evaluated.
const (
	MsgIDRequired           = "ID is required"
	MsgNameRequired         = "Name is required"
	MsgNameTooLong          = "Name exceeds 100 characters"
	MsgNameInvalidChars     = "Name contains invalid characters"
	MsgQuantityNegative     = "Quantity cannot be negative"
	MsgPriceNegative        = "Price cannot be negative"
	MsgPriceTooPrecise      = "Price cannot have more than 2 decimal places"
	MsgDeltaZero            = "Delta cannot be zero"
	MsgProductNotFound      = "Product not found"
	MsgStockWouldBeNegative = "Resulting stock cannot be negative"
)

var ErrRepository = errors.New("inventory: repository failure")

// Result reports whether an inventory change was applied and, if not, every rule it broke.
type Result struct {
	Success bool
	Errors  []string
}

func ok() Result { return Result{Success: true} }

func fail(errs []string) Result { return Result{Success: false, Errors: errs} }

// AddProductInput is the candidate product submitted for creation.
type AddProductInput struct {
	ID       string
	SKU      string
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// Validator guards every change to the product catalogue.
type Validator struct {
	repo domproduct.Repository
	ins  application.Instruments
}

func NewValidator(repo domproduct.Repository, tel observability.Observability) *Validator {
	return &Validator{
		repo: repo,
		ins:  application.NewInstruments(tel, inventoryService),
	}
}

// AddProduct checks every rule, then stores the product only if none failed.
func (v *Validator) AddProduct(ctx context.Context, in AddProductInput) (res Result, err error) {
	ctx, span := v.ins.Tracer.Start(ctx, spanPrefix+"AddProduct",
		attribute.String("use_case", useCaseAddProduct),
		attribute.String("product.id", in.ID),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	defer func() {
		v.finish(ctx, span, useCaseAddProduct, outcome, statusText, start, res, err,
			observability.F("product_id", in.ID),
		)
	}()

	errs := validateCandidate(in)
	if len(errs) > 0 {
		outcome, statusText = "rejected", "VALIDATION_FAILED"
		return fail(errs), nil
	}

	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		sku = in.ID
	}
	p := &domproduct.Product{
		ID:        in.ID,
		SKU:       sku,
		Name:      in.Name,
		Quantity:  in.Quantity,
		Price:     in.Price,
		UpdatedAt: time.Now().UTC(),
	}
	if err = v.repo.Add(ctx, p); err != nil {
		outcome, statusText = "error", "REPO_ADD_FAILED"
		return Result{}, wrapRepositoryError(err)
	}
	return ok(), nil
}

// UpdateStock applies delta to a product's quantity. The id and delta rules are always checked,
// and the product is always looked up, so one call reports every problem at once.
func (v *Validator) UpdateStock(ctx context.Context, productID string, delta int) (res Result, err error) {
	ctx, span := v.ins.Tracer.Start(ctx, spanPrefix+"UpdateStock",
		attribute.String("use_case", useCaseUpdateStock),
		attribute.String("product.id", productID),
		attribute.Int("stock.delta", delta),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	defer func() {
		v.finish(ctx, span, useCaseUpdateStock, outcome, statusText, start, res, err,
			observability.F("product_id", productID),
			observability.F("delta", delta),
		)
	}()

	var errs []string
	if isBlank(productID) {
		errs = append(errs, MsgIDRequired)
	}
	if delta == 0 {
		errs = append(errs, MsgDeltaZero)
	}

	p, findErr := v.repo.FindByID(ctx, productID)
	switch {
	case errors.Is(findErr, domproduct.ErrNotFound):
		errs = append(errs, MsgProductNotFound)
	case findErr != nil:
		outcome, statusText = "error", "REPO_LOOKUP_FAILED"
		return Result{}, wrapRepositoryError(findErr)
	case p.Quantity+delta < 0:
		errs = append(errs, MsgStockWouldBeNegative)
	}

	if len(errs) > 0 {
		outcome, statusText = "rejected", "VALIDATION_FAILED"
		return fail(errs), nil
	}

	if err = v.repo.UpdateQuantity(ctx, productID, p.Quantity+delta); err != nil {
		outcome, statusText = "error", "REPO_UPDATE_FAILED"
		return Result{}, wrapRepositoryError(err)
	}
	span.SetAttributes(attribute.Int("stock.quantity", p.Quantity+delta))
	return ok(), nil
}

// GetProduct returns the stored product or domproduct.ErrNotFound.
func (v *Validator) GetProduct(ctx context.Context, productID string) (p *domproduct.Product, err error) {
	ctx, span := v.ins.Tracer.Start(ctx, spanPrefix+"GetProduct",
		attribute.String("use_case", useCaseGetProduct),
		attribute.String("product.id", productID),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	defer func() {
		v.finish(ctx, span, useCaseGetProduct, outcome, statusText, start, Result{Success: err == nil}, err,
			observability.F("product_id", productID),
		)
	}()

	if isBlank(productID) {
		outcome, statusText = "error", "PRODUCT_ID_REQUIRED"
		return nil, domproduct.ErrNotFound
	}
	p, err = v.repo.FindByID(ctx, productID)
	if err != nil {
		outcome, statusText = "error", "PRODUCT_LOOKUP_FAILED"
		if errors.Is(err, domproduct.ErrNotFound) {
			statusText = "PRODUCT_NOT_FOUND"
			return nil, err
		}
		return nil, wrapRepositoryError(err)
	}
	return p, nil
}

func (v *Validator) finish(
	ctx context.Context,
	span trace.Span,
	useCase, outcome, statusText string,
	start time.Time,
	res Result,
	err error,
	extra ...observability.Field,
) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, statusText)
	} else {
		span.SetStatus(codes.Ok, statusText)
	}
	span.End()

	lat := v.ins.Done(useCase, outcome, start)

	fields := append([]observability.Field{
		observability.F("use_case", useCase),
		observability.F("outcome", outcome),
		observability.F("status", statusText),
		observability.F("latency_seconds", lat),
	}, extra...)
	fields = append(fields, observability.TraceFields(ctx)...)
	if len(res.Errors) > 0 {
		fields = append(fields, observability.F("validation_errors", res.Errors))
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	logctx.FromOr(ctx, v.ins.Log).Info("use_case_done", fields...)
}

func validateCandidate(in AddProductInput) []string {
	var errs []string
	if isBlank(in.ID) {
		errs = append(errs, MsgIDRequired)
	}
	if isBlank(in.Name) {
		errs = append(errs, MsgNameRequired)
	}
	if utf8.RuneCountInString(in.Name) > maxNameLength {
		errs = append(errs, MsgNameTooLong)
	}
	if strings.ContainsAny(in.Name, invalidChars) {
		errs = append(errs, MsgNameInvalidChars)
	}
	if in.Quantity < 0 {
		errs = append(errs, MsgQuantityNegative)
	}
	if in.Price.IsNegative() {
		errs = append(errs, MsgPriceNegative)
	}
	// Prices are stored as NUMERIC(12, 2); anything finer would be rounded.
	if !in.Price.Equal(in.Price.Truncate(priceScale)) {
		errs = append(errs, MsgPriceTooPrecise)
	}
	return errs
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func wrapRepositoryError(err error) error {
	switch {
	case errors.Is(err, domproduct.ErrNotFound), errors.Is(err, domproduct.ErrConflict):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrRepository, err)
	}
}
