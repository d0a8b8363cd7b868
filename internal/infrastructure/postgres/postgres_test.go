package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/postgres"
	"github.com/Zhima-Mochi/minishop-checkout/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*postgres.Store, context.Context) {
	t.Helper()
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)
	return postgres.NewStore(pool), ctx
}

func TestProductRepository_RoundTrip(t *testing.T) {
	store, ctx := setup(t)
	repo := store.Products()

	p := &domproduct.Product{ID: "1", SKU: "SKU-001", Name: "Laptop", Quantity: 100, Price: decimal.RequireFromString("999.90")}
	require.NoError(t, repo.Add(ctx, p))

	got, err := repo.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "SKU-001", got.SKU)
	assert.Equal(t, 100, got.Quantity)
	assert.True(t, p.Price.Equal(got.Price))

	bySKU, err := repo.FindBySKU(ctx, "SKU-001")
	require.NoError(t, err)
	assert.Equal(t, "1", bySKU.ID)

	require.NoError(t, repo.UpdateQuantity(ctx, "1", 7))
	got, err = repo.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)
}

func TestProductRepository_Errors(t *testing.T) {
	store, ctx := setup(t)
	repo := store.Products()
	testutil.InsertProduct(t, ctx, store.Products().Pool(), "1", "SKU-001", 1)

	_, err := repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domproduct.ErrNotFound)

	err = repo.Add(ctx, &domproduct.Product{ID: "1", SKU: "OTHER", Name: "Dup"})
	assert.ErrorIs(t, err, domproduct.ErrConflict)

	err = repo.Add(ctx, &domproduct.Product{ID: "2", SKU: "SKU-001", Name: "Dup"})
	assert.ErrorIs(t, err, domproduct.ErrConflict)

	assert.ErrorIs(t, repo.UpdateQuantity(ctx, "missing", 1), domproduct.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateQuantity(ctx, "1", -1), domproduct.ErrInsufficientStock)
}

func TestStore_CommitCheckout(t *testing.T) {
	store, ctx := setup(t)
	testutil.InsertProduct(t, ctx, store.Products().Pool(), "1", "SKU-001", 1)

	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	o, err := domorder.New("order-1", "1", "a@b.com", createdAt)
	require.NoError(t, err)

	require.NoError(t, store.CommitCheckout(ctx, "1", o))

	p, err := store.Products().FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Quantity)

	saved, err := store.Orders().FindByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", saved.CustomerEmail)
	assert.True(t, createdAt.Equal(saved.CreatedAt))

	again, _ := domorder.New("order-2", "1", "a@b.com", createdAt)
	assert.ErrorIs(t, store.CommitCheckout(ctx, "1", again), domproduct.ErrInsufficientStock)

	missing, _ := domorder.New("order-3", "nope", "a@b.com", createdAt)
	assert.ErrorIs(t, store.CommitCheckout(ctx, "nope", missing), domproduct.ErrNotFound)
}

func TestStore_CommitCheckoutRollsBackOnDuplicateOrder(t *testing.T) {
	store, ctx := setup(t)
	testutil.InsertProduct(t, ctx, store.Products().Pool(), "1", "SKU-001", 5)

	o, _ := domorder.New("order-1", "1", "a@b.com", time.Now())
	require.NoError(t, store.CommitCheckout(ctx, "1", o))
	assert.ErrorIs(t, store.CommitCheckout(ctx, "1", o), domorder.ErrConflict)

	p, err := store.Products().FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 4, p.Quantity)
}

func TestStore_CommitCheckoutNeverOversells(t *testing.T) {
	store, ctx := setup(t)
	testutil.InsertProduct(t, ctx, store.Products().Pool(), "1", "SKU-001", 3)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		committed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o, _ := domorder.New("order-"+string(rune('a'+i)), "1", "a@b.com", time.Now())
			if err := store.CommitCheckout(ctx, "1", o); err == nil {
				mu.Lock()
				committed++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, committed)
	p, err := store.Products().FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Quantity)
}
