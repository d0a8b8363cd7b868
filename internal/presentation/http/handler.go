package httppresentation

import (
	"context"
	"net/http"

	appcheckout "github.com/Zhima-Mochi/minishop-checkout/internal/application/checkout"
	appinventory "github.com/Zhima-Mochi/minishop-checkout/internal/application/inventory"
	domcheckout "github.com/Zhima-Mochi/minishop-checkout/internal/domain/checkout"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/go-chi/chi/v5"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	headerIdempotencyKey = "Idempotency-Key"
	routeUnknown         = "unknown"
	defaultMaxBodyBytes  = 1 << 20
	contentTypeJSON      = "application/json"
	contentTypeTextPlain = "text/plain; charset=utf-8"
)

type OrderPlacer interface {
	Execute(ctx context.Context, cmd appcheckout.PlaceOrderInput) (*domcheckout.Outcome, error)
}

type OrderReader interface {
	Execute(ctx context.Context, orderID string) (*domorder.Order, error)
}

type Catalogue interface {
	AddProduct(ctx context.Context, in appinventory.AddProductInput) (appinventory.Result, error)
	UpdateStock(ctx context.Context, productID string, delta int) (appinventory.Result, error)
	GetProduct(ctx context.Context, productID string) (*domproduct.Product, error)
}

type Handler struct {
	orders   OrderPlacer
	reader   OrderReader
	products Catalogue
	metrics  http.Handler

	log observability.Logger
	tel observability.Observability
}

// NewHandler wires the HTTP surface. metrics serves /metrics and may be nil.
func NewHandler(
	orders OrderPlacer,
	reader OrderReader,
	products Catalogue,
	metrics http.Handler,
	tel observability.Observability,
) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		orders:   orders,
		reader:   reader,
		products: products,
		metrics:  metrics,
		log:      tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:      tel,
	}
}

// Router wires each route behind Trace → Request Logger → HTTP metrics → Access log.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		h.withTrace,
		h.withRequestLogger,
		h.withHTTPMetrics,
		h.withAccessLog,
	)

	r.Post("/orders", h.handlePlaceOrder)
	r.Get("/orders/{id}", h.handleGetOrder)

	r.Post("/products", h.handleAddProduct)
	r.Get("/products/{id}", h.handleGetProduct)
	r.Patch("/products/{id}/stock", h.handleUpdateStock)

	r.Get("/health", h.handleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
