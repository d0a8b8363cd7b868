package payment

import (
	"context"
	"sync"

	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
)

// FakeGateway accepts every charge until told to decline. Used for local runs and tests.
type FakeGateway struct {
	mu      sync.RWMutex
	decline bool
	message string
	charged []string
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

// Decline makes later charges fail with message. An empty message leaves the reason unset.
func (g *FakeGateway) Decline(message string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.decline, g.message = true, message
}

func (g *FakeGateway) Accept() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.decline, g.message = false, ""
}

func (g *FakeGateway) Charge(ctx context.Context, o *domorder.Order) (dompayment.Result, error) {
	if err := ctx.Err(); err != nil {
		return dompayment.Result{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if o != nil {
		g.charged = append(g.charged, o.ID)
	}
	if g.decline {
		return dompayment.Fail(g.message), nil
	}
	return dompayment.Ok(), nil
}

// Charged returns the ids of every order a charge was attempted for.
func (g *FakeGateway) Charged() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.charged...)
}
