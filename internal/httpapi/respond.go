package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/velstore/storefront/internal/cart"
	"github.com/velstore/storefront/internal/catalog"
	"github.com/velstore/storefront/internal/checkout"
	"github.com/velstore/storefront/internal/inventory"
	"github.com/velstore/storefront/internal/orders"
	"github.com/velstore/storefront/internal/payment"
	"github.com/velstore/storefront/internal/pricing"
	"github.com/velstore/storefront/internal/promo"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError converts domain errors into HTTP status codes.
func handleServiceError(w http.ResponseWriter, err error) {
	var vErr *promo.ValidationError
	if errors.As(err, &vErr) {
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: vErr.Error(),
			Code:  string(vErr.Reason),
		})
		return
	}

	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrPromotionNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrInvalidInput),
		errors.Is(err, pricing.ErrUnknownZone),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrMissingIdempotencyKey):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, catalog.ErrDuplicateCode),
		errors.Is(err, catalog.ErrOfferConflict),
		errors.Is(err, orders.ErrDuplicateCheckout):
		respondError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrProductNotFound):
		respondError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, payment.ErrChargeRefused):
		respondError(w, http.StatusPaymentRequired, "payment_failed", err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
