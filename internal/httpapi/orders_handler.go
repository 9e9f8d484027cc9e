package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/velstore/storefront/internal/domain"
)

type OrderReader interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderReader
	timeout time.Duration
}

func NewOrdersHandler(orders OrderReader, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{orders: orders, timeout: timeout}
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	list, err := h.orders.ListOrdersByUserID(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if list == nil {
		list = []*domain.Order{}
	}

	respondJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a valid UUID")
		return
	}

	order, err := h.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// users only see their own orders
	if order.UserID != userID {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}

	respondJSON(w, http.StatusOK, order)
}
