package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/velstore/storefront/internal/domain"
)

type WishlistService interface {
	Get(ctx context.Context, userID string) (*domain.Wishlist, error)
	Add(ctx context.Context, userID string, productID int64) error
	Remove(ctx context.Context, userID string, productID int64) error
	MoveToCart(ctx context.Context, userID string, productID int64) error
}

type WishlistHandler struct {
	service WishlistService
	timeout time.Duration
}

func NewWishlistHandler(service WishlistService, timeout time.Duration) *WishlistHandler {
	return &WishlistHandler{service: service, timeout: timeout}
}

func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	list, err := h.service.Get(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.Add, http.StatusCreated)
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.Remove, http.StatusOK)
}

func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.MoveToCart, http.StatusOK)
}

func (h *WishlistHandler) mutate(w http.ResponseWriter, r *http.Request, op func(context.Context, string, int64) error, okStatus int) {
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

	if err := op(ctx, userID, productID); err != nil {
		handleServiceError(w, err)
		return
	}

	list, err := h.service.Get(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, okStatus, list)
}
