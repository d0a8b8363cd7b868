package httppresentation

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	appcheckout "github.com/Zhima-Mochi/minishop-checkout/internal/application/checkout"
	domcheckout "github.com/Zhima-Mochi/minishop-checkout/internal/domain/checkout"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"github.com/go-chi/chi/v5"
)

var errInvalidID = errors.New("id must be a string or an integer")

// POST /orders answers every 400 in plain text.
const (
	msgInvalidOrderRequest   = "Invalid order request"
	msgCustomerEmailRequired = "Customer email is required"
)

// flexibleID accepts both "1" and 1 so numeric ids from browser forms keep working.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexibleID(s)
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return errInvalidID
	}
	*id = flexibleID(strconv.FormatInt(n, 10))
	return nil
}

type placeOrderRequest struct {
	ProductID     flexibleID `json:"productId"`
	CustomerEmail string     `json:"customerEmail"`
}

type orderResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"productId"`
	CustomerEmail string    `json:"customerEmail"`
	CreatedAt     time.Time `json:"createdAt"`
	Status        string    `json:"status,omitempty"`
}

func newOrderResponse(o *domorder.Order, status string) orderResponse {
	return orderResponse{
		ID:            o.ID,
		ProductID:     o.ProductID,
		CustomerEmail: o.CustomerEmail,
		CreatedAt:     o.CreatedAt,
		Status:        status,
	}
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidOrderRequest)
		return
	}
	if strings.TrimSpace(req.CustomerEmail) == "" {
		writeText(w, http.StatusBadRequest, msgCustomerEmailRequired)
		return
	}

	out, err := h.orders.Execute(r.Context(), appcheckout.PlaceOrderInput{
		ProductID:      string(req.ProductID),
		CustomerEmail:  req.CustomerEmail,
		IdempotencyKey: r.Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		logctx.FromOr(r.Context(), h.log).Warn("place_order_failed",
			observability.F("error", err.Error()),
		)
		if errors.Is(err, appcheckout.ErrValidation) {
			writeText(w, http.StatusBadRequest, err.Error())
			return
		}
		writeDomainError(w, err)
		return
	}

	switch {
	case out.IsConfirmed():
		writeJSON(w, http.StatusOK, newOrderResponse(out.Order, out.Status))
	case out.Reason == domcheckout.ReasonPaymentDeclined:
		writeText(w, http.StatusServiceUnavailable, out.Message)
	default:
		writeText(w, http.StatusBadRequest, domcheckout.MessageProductNotAvailable)
	}
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.reader.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(o, ""))
}
