package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/velstore/storefront/internal/checkout"
	"github.com/velstore/storefront/internal/domain"
	"github.com/velstore/storefront/internal/promo"
)

type CheckoutService interface {
	BuildQuote(ctx context.Context, userID, zoneID, promoCode string) (*checkout.Quote, error)
	Checkout(ctx context.Context, req *checkout.Request) (*domain.Order, error)
}

type CheckoutHandler struct {
	service CheckoutService
	timeout time.Duration
}

func NewCheckoutHandler(service CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{service: service, timeout: timeout}
}

type QuoteRequestDTO struct {
	ZoneID    string `json:"zone_id"`
	PromoCode string `json:"promo_code"`
}

type CheckoutRequestDTO struct {
	ZoneID         string `json:"zone_id"`
	PromoCode      string `json:"promo_code"`
	IdempotencyKey string `json:"idempotency_key"`
}

type PromoValidationDTO struct {
	Valid     bool   `json:"valid"`
	Code      string `json:"code"`
	Reason    string `json:"reason,omitempty"`
	Shortfall string `json:"shortfall,omitempty"`
}

func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req QuoteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	quote, err := h.service.BuildQuote(ctx, userID, req.ZoneID, req.PromoCode)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// ValidatePromo checks a promo code against the user's current cart. A
// rejected code is a normal 200 response carrying the failure reason; the
// client renders it inline next to the input field.
func (h *CheckoutHandler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req QuoteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PromoCode == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "promo_code is required")
		return
	}

	quote, err := h.service.BuildQuote(ctx, userID, req.ZoneID, req.PromoCode)
	if err != nil {
		var vErr *promo.ValidationError
		if errors.As(err, &vErr) {
			result := PromoValidationDTO{
				Code:   vErr.Code,
				Reason: string(vErr.Reason),
			}
			if vErr.Reason == promo.ReasonBelowMinimum {
				result.Shortfall = vErr.Shortfall.StringFixed(2)
			}
			respondJSON(w, http.StatusOK, result)
			return
		}
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, PromoValidationDTO{Valid: true, Code: quote.PromoCode})
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.IdempotencyKey == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "idempotency_key is required")
		return
	}

	order, err := h.service.Checkout(ctx, &checkout.Request{
		UserID:         userID,
		ZoneID:         req.ZoneID,
		PromoCode:      req.PromoCode,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}
