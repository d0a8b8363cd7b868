package httppresentation

import (
	"net/http"
	"time"

	appinventory "github.com/Zhima-Mochi/minishop-checkout/internal/application/inventory"
	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type addProductRequest struct {
	ID       flexibleID      `json:"id"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type updateStockRequest struct {
	Delta int `json:"delta"`
}

type productResponse struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type validationResponse struct {
	Errors []string `json:"errors"`
}

func newProductResponse(p *domproduct.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Price:     p.Price,
		UpdatedAt: p.UpdatedAt,
	}
}

func (h *Handler) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.products.AddProduct(r.Context(), appinventory.AddProductInput{
		ID:       string(req.ID),
		SKU:      req.SKU,
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !res.Success {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Errors: res.Errors})
		return
	}

	h.writeProduct(w, r, string(req.ID), http.StatusCreated)
}

func (h *Handler) handleUpdateStock(w http.ResponseWriter, r *http.Request) {
	var req updateStockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := chi.URLParam(r, "id")
	res, err := h.products.UpdateStock(r.Context(), id, req.Delta)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !res.Success {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Errors: res.Errors})
		return
	}

	h.writeProduct(w, r, id, http.StatusOK)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	h.writeProduct(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) writeProduct(w http.ResponseWriter, r *http.Request, id string, status int) {
	p, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, status, newProductResponse(p))
}
