package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/velstore/storefront/internal/cart"
	"github.com/velstore/storefront/internal/domain"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, productID int64, quantity int) error
	SetQuantity(ctx context.Context, userID string, productID int64, quantity int) error
	RemoveItem(ctx context.Context, userID string, productID int64) error
	Clear(ctx context.Context, userID string) error
	Summarize(ctx context.Context, userID string) (*cart.Summary, error)
}

type CartHandler struct {
	service CartService
	timeout time.Duration
}

func NewCartHandler(service CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{service: service, timeout: timeout}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	c, err := h.service.GetCart(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	if err := h.service.AddItem(ctx, userID, req.ProductID, req.Quantity); err != nil {
		handleServiceError(w, err)
		return
	}

	c, err := h.service.GetCart(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, err := parseID(r, "product_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	// a quantity below 1 removes the item
	if err := h.service.SetQuantity(ctx, userID, productID, req.Quantity); err != nil {
		handleServiceError(w, err)
		return
	}

	c, err := h.service.GetCart(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, err := parseID(r, "product_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	if err := h.service.RemoveItem(ctx, userID, productID); err != nil {
		handleServiceError(w, err)
		return
	}

	c, err := h.service.GetCart(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.service.Clear(ctx, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *CartHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	summary, err := h.service.Summarize(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
