package checkout

import (
	"context"
	"strings"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
)

var _ application.UseCase[string, *domorder.Order] = (*GetOrderUseCase)(nil)

type GetOrderUseCase struct {
	orders domorder.Repository
}

func NewGetOrderUseCase(orders domorder.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orders: orders}
}

func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID string) (*domorder.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, newValidation("order id is required")
	}
	o, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return o, nil
}
