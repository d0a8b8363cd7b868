package checkout

import (
	"errors"
	"fmt"

	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
)

var (
	ErrValidation          = errors.New("checkout: invalid input")
	ErrRepository          = errors.New("checkout: repository failure")
	ErrStockCheck          = errors.New("checkout: stock check failed")
	ErrIdempotencyInFlight = errors.New("checkout: request with this idempotency key is in progress")
	ErrNotFound            = domorder.ErrNotFound
)

func newValidation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func wrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domorder.ErrNotFound), errors.Is(err, domproduct.ErrNotFound):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrRepository, err)
	}
}
