package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
)

func TestStockGate_HasStock(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindBySKU", mock.Anything, "SKU-001").Return(&domproduct.Product{SKU: "SKU-001", Quantity: 1}, nil)
	repo.On("FindBySKU", mock.Anything, "SKU-000").Return(&domproduct.Product{SKU: "SKU-000", Quantity: 0}, nil)
	repo.On("FindBySKU", mock.Anything, "GONE").Return(nil, domproduct.ErrNotFound)
	repo.On("FindBySKU", mock.Anything, "BROKEN").Return(nil, errors.New("timeout"))
	gate := NewStockGate(repo)
	ctx := context.Background()

	ok, err := gate.HasStock(ctx, "SKU-001", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.HasStock(ctx, "SKU-001", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = gate.HasStock(ctx, "SKU-000", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = gate.HasStock(ctx, "GONE", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = gate.HasStock(ctx, "BROKEN", 1)
	assert.Error(t, err)
}

func TestStockGate_Reserve(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindBySKU", mock.Anything, "SKU-001").Return(&domproduct.Product{SKU: "SKU-001", Quantity: 1}, nil)
	repo.On("FindBySKU", mock.Anything, "SKU-000").Return(&domproduct.Product{SKU: "SKU-000", Quantity: 0}, nil)
	gate := NewStockGate(repo)
	ctx := context.Background()

	assert.NoError(t, gate.Reserve(ctx, "SKU-001", 1))
	assert.ErrorIs(t, gate.Reserve(ctx, "SKU-000", 1), domproduct.ErrInsufficientStock)
	assert.ErrorIs(t, gate.Reserve(ctx, "SKU-001", 0), domproduct.ErrInvalidQuantity)
}
