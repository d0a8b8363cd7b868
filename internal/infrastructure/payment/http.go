package payment

import (
	"context"
	"fmt"
	"time"

	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const chargePath = "/charges"

type chargeRequest struct {
	OrderID       string `json:"order_id"`
	ProductID     string `json:"product_id"`
	CustomerEmail string `json:"customer_email"`
}

type chargeResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// HTTPGateway charges orders through a remote payment provider. It never retries.
type HTTPGateway struct {
	client *resty.Client
}

func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json")
	return &HTTPGateway{client: client}
}

// Charge posts the order. A 402 or 422 with a JSON body is a decline; any other non-2xx is an error.
func (g *HTTPGateway) Charge(ctx context.Context, o *domorder.Order) (dompayment.Result, error) {
	if o == nil {
		return dompayment.Result{}, fmt.Errorf("payment: order is required")
	}

	var body chargeResponse
	req := g.client.R().
		SetContext(ctx).
		SetBody(chargeRequest{
			OrderID:       o.ID,
			ProductID:     o.ProductID,
			CustomerEmail: o.CustomerEmail,
		}).
		SetResult(&body).
		SetError(&body)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := req.Post(chargePath)
	if err != nil {
		return dompayment.Result{}, fmt.Errorf("payment: charge %s: %w", o.ID, err)
	}

	switch code := resp.StatusCode(); {
	case resp.IsSuccess():
	case code == 402 || code == 422:
		body.Success = false
	default:
		return dompayment.Result{}, fmt.Errorf("payment: charge %s: unexpected status %d", o.ID, code)
	}

	if !body.Success {
		return dompayment.Fail(body.ErrorMessage), nil
	}
	return dompayment.Ok(), nil
}
