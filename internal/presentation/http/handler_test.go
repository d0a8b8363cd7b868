package httppresentation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcheckout "github.com/Zhima-Mochi/minishop-checkout/internal/application/checkout"
	appinventory "github.com/Zhima-Mochi/minishop-checkout/internal/application/inventory"
	"github.com/Zhima-Mochi/minishop-checkout/internal/clock"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/prometrics"
	infrapayment "github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/payment"
)

type discardSinks struct{}

func (discardSinks) SendConfirmation(context.Context, string, *domorder.Order) error { return nil }
func (discardSinks) PublishOrderCreated(context.Context, *domorder.Order) error      { return nil }

type testServer struct {
	store   *memory.Store
	gateway *infrapayment.FakeGateway
	reg     *prometheus.Registry
	handler http.Handler
}

func newTestServer(t *testing.T, stock int) *testServer {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Products().Add(context.Background(), &domproduct.Product{
		ID: "1", SKU: "SKU-001", Name: "Laptop", Quantity: stock, Price: decimal.NewFromInt(1200),
	}))

	reg := prometheus.NewRegistry()
	counters, histograms := infraobs.RegisterDefaultMetrics(prometrics.New(reg, "", ""))
	tel := infraobs.New(nil, nil, counters, histograms)

	gateway := infrapayment.NewFakeGateway()
	orchestrator := appcheckout.NewOrchestrator(
		appinventory.NewStockGate(store.Products()), gateway, discardSinks{}, discardSinks{}, store, tel,
	)
	placeOrder := appcheckout.NewPlaceOrderUseCase(
		store.Products(), store.Orders(), orchestrator, id.NewUUIDGenerator(),
		clock.NewSystem(), memory.NewIdempotencyStore(time.Hour), tel,
	)
	h := NewHandler(
		placeOrder,
		appcheckout.NewGetOrderUseCase(store.Orders()),
		appinventory.NewValidator(store.Products(), tel),
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		tel,
	)
	return &testServer{store: store, gateway: gateway, reg: reg, handler: h.Router()}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) stock(t *testing.T) int {
	t.Helper()
	p, err := s.store.Products().FindByID(context.Background(), "1")
	require.NoError(t, err)
	return p.Quantity
}

func TestPlaceOrder_Confirmed(t *testing.T) {
	srv := newTestServer(t, 3)

	rec := srv.do(t, http.MethodPost, "/orders", `{"productId":1,"customerEmail":"a@b.com"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body orderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.ID)
	assert.Equal(t, "1", body.ProductID)
	assert.Equal(t, "a@b.com", body.CustomerEmail)
	assert.Equal(t, "Pending Payment", body.Status)
	assert.Equal(t, 2, srv.stock(t))
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	get := srv.do(t, http.MethodGet, "/orders/"+body.ID, "")
	require.Equal(t, http.StatusOK, get.Code)
	assert.Contains(t, get.Body.String(), `"customerEmail":"a@b.com"`)
}

func TestPlaceOrder_AcceptsStringProductID(t *testing.T) {
	srv := newTestServer(t, 1)

	rec := srv.do(t, http.MethodPost, "/orders", `{"productId":"1","customerEmail":"a@b.com"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, srv.stock(t))
}

func TestPlaceOrder_ProductNotAvailable(t *testing.T) {
	tests := []struct {
		name  string
		stock int
		body  string
	}{
		{name: "out of stock", stock: 0, body: `{"productId":1,"customerEmail":"a@b.com"}`},
		{name: "unknown product", stock: 5, body: `{"productId":99,"customerEmail":"a@b.com"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.stock)

			rec := srv.do(t, http.MethodPost, "/orders", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Product not available", rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
			assert.Empty(t, srv.gateway.Charged())
			assert.Equal(t, tt.stock, srv.stock(t))
		})
	}
}

func TestPlaceOrder_PaymentDeclined(t *testing.T) {
	srv := newTestServer(t, 5)
	srv.gateway.Decline("Card expired")

	rec := srv.do(t, http.MethodPost, "/orders", `{"productId":1,"customerEmail":"a@b.com"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Card expired", rec.Body.String())
	assert.Equal(t, 5, srv.stock(t))
}

func TestPlaceOrder_DeclinedWithoutMessageUsesDefault(t *testing.T) {
	srv := newTestServer(t, 5)
	srv.gateway.Decline("")

	rec := srv.do(t, http.MethodPost, "/orders", `{"productId":1,"customerEmail":"a@b.com"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Payment rejected", rec.Body.String())
}

func TestPlaceOrder_BadRequests(t *testing.T) {
	srv := newTestServer(t, 5)

	for name, tc := range map[string]struct {
		body string
		want string
	}{
		"malformed json":  {`{"productId":`, msgInvalidOrderRequest},
		"fractional id":   {`{"productId":1.5,"customerEmail":"a@b.com"}`, msgInvalidOrderRequest},
		"missing email":   {`{"productId":1}`, msgCustomerEmailRequired},
		"blank email":     {`{"productId":1,"customerEmail":""}`, msgCustomerEmailRequired},
		"missing product": {`{"customerEmail":"a@b.com"}`, "Product not available"},
		"null product":    {`{"productId":null,"customerEmail":"a@b.com"}`, "Product not available"},
	} {
		t.Run(name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/orders", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, contentTypeTextPlain, rec.Header().Get("Content-Type"))
			assert.Equal(t, tc.want, rec.Body.String())
		})
	}
	assert.Equal(t, 5, srv.stock(t))
}

func TestPlaceOrder_IdempotencyKeyReplaysOrder(t *testing.T) {
	srv := newTestServer(t, 5)
	body := `{"productId":1,"customerEmail":"a@b.com"}`

	first := srv.do(t, http.MethodPost, "/orders", body, headerIdempotencyKey, "k-1")
	second := srv.do(t, http.MethodPost, "/orders", body, headerIdempotencyKey, "k-1")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	var a, b orderResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, 4, srv.stock(t))
	assert.Len(t, srv.gateway.Charged(), 1)
}

func TestGetOrder_NotFound(t *testing.T) {
	srv := newTestServer(t, 1)

	rec := srv.do(t, http.MethodGet, "/orders/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProducts_AddGetAndUpdateStock(t *testing.T) {
	srv := newTestServer(t, 1)

	created := srv.do(t, http.MethodPost, "/products",
		`{"id":"2","sku":"SKU-002","name":"Mouse","quantity":10,"price":"19.99"}`)
	require.Equal(t, http.StatusCreated, created.Code)
	var p productResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &p))
	assert.Equal(t, "SKU-002", p.SKU)
	assert.True(t, decimal.RequireFromString("19.99").Equal(p.Price))

	updated := srv.do(t, http.MethodPatch, "/products/2/stock", `{"delta":-4}`)
	require.Equal(t, http.StatusOK, updated.Code)
	require.NoError(t, json.Unmarshal(updated.Body.Bytes(), &p))
	assert.Equal(t, 6, p.Quantity)

	got := srv.do(t, http.MethodGet, "/products/2", "")
	require.Equal(t, http.StatusOK, got.Code)
	assert.Contains(t, got.Body.String(), `"name":"Mouse"`)
}

func TestProducts_ValidationAndConflicts(t *testing.T) {
	srv := newTestServer(t, 1)

	invalid := srv.do(t, http.MethodPost, "/products", `{"id":"","name":"","quantity":-1,"price":"-1"}`)
	require.Equal(t, http.StatusUnprocessableEntity, invalid.Code)
	var v validationResponse
	require.NoError(t, json.Unmarshal(invalid.Body.Bytes(), &v))
	assert.Contains(t, v.Errors, appinventory.MsgIDRequired)
	assert.Contains(t, v.Errors, appinventory.MsgNameRequired)
	assert.Contains(t, v.Errors, appinventory.MsgQuantityNegative)
	assert.Contains(t, v.Errors, appinventory.MsgPriceNegative)

	dup := srv.do(t, http.MethodPost, "/products", `{"id":1,"sku":"X","name":"Dup","quantity":1,"price":1}`)
	assert.Equal(t, http.StatusConflict, dup.Code)

	negative := srv.do(t, http.MethodPatch, "/products/1/stock", `{"delta":-2}`)
	require.Equal(t, http.StatusUnprocessableEntity, negative.Code)
	assert.Contains(t, negative.Body.String(), appinventory.MsgStockWouldBeNegative)

	missing := srv.do(t, http.MethodGet, "/products/404", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, 1)

	health := srv.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, health.Code)
	assert.JSONEq(t, `{"status":"ok"}`, health.Body.String())

	srv.do(t, http.MethodGet, "/orders/missing", "")

	series, err := testutil.GatherAndCount(srv.reg, "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series, "one series per route and status")

	metrics := srv.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `route="/orders/{id}"`)
	assert.Contains(t, metrics.Body.String(), `route="/health"`)
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t, 1)

	rec := srv.do(t, http.MethodGet, "/health", "", headerRequestID, "req-42")

	assert.Equal(t, "req-42", rec.Header().Get(headerRequestID))
}
