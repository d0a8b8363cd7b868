package checkout

import (
	"context"
	"strconv"

	"github.com/stretchr/testify/mock"

	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
)

type mockStock struct{ mock.Mock }

func (m *mockStock) HasStock(ctx context.Context, sku string, quantity int) (bool, error) {
	args := m.Called(ctx, sku, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *mockStock) Reserve(ctx context.Context, sku string, quantity int) error {
	return m.Called(ctx, sku, quantity).Error(0)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Charge(ctx context.Context, o *domorder.Order) (dompayment.Result, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(dompayment.Result), args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) SendConfirmation(ctx context.Context, email string, o *domorder.Order) error {
	return m.Called(ctx, email, o).Error(0)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) PublishOrderCreated(ctx context.Context, o *domorder.Order) error {
	return m.Called(ctx, o).Error(0)
}

type mockLedger struct{ mock.Mock }

func (m *mockLedger) CommitCheckout(ctx context.Context, productID string, o *domorder.Order) error {
	return m.Called(ctx, productID, o).Error(0)
}

type mockIdempotency struct{ mock.Mock }

func (m *mockIdempotency) Claim(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockIdempotency) Complete(ctx context.Context, key, orderID string) error {
	return m.Called(ctx, key, orderID).Error(0)
}

func (m *mockIdempotency) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type sequentialIDs struct{ n int }

func (s *sequentialIDs) NewID() string {
	s.n++
	return "order-" + strconv.Itoa(s.n)
}
