package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/velstore/storefront/internal/domain"
)

type PromotionStore interface {
	ListPromotions(ctx context.Context) ([]domain.Promotion, error)
	GetPromotion(ctx context.Context, id int64) (*domain.Promotion, error)
	CreatePromotion(ctx context.Context, p *domain.Promotion) error
	UpdatePromotion(ctx context.Context, p *domain.Promotion) error
	DeactivatePromotion(ctx context.Context, id int64) error
}

// AdminHandler manages the promotion catalog. The admin surface shares the
// mock auth of the public API; role checks belong to the real JWT layer.
type AdminHandler struct {
	store   PromotionStore
	timeout time.Duration
}

func NewAdminHandler(store PromotionStore, timeout time.Duration) *AdminHandler {
	return &AdminHandler{store: store, timeout: timeout}
}

func (h *AdminHandler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	promotions, err := h.store.ListPromotions(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, promotions)
}

func (h *AdminHandler) GetPromotion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := parseID(r, "promotion_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_promotion_id", "promotion_id must be a positive integer")
		return
	}

	promotion, err := h.store.GetPromotion(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, promotion)
}

func (h *AdminHandler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var p domain.Promotion
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.store.CreatePromotion(ctx, &p); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, p)
}

func (h *AdminHandler) UpdatePromotion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := parseID(r, "promotion_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_promotion_id", "promotion_id must be a positive integer")
		return
	}

	var p domain.Promotion
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	p.ID = id

	if err := h.store.UpdatePromotion(ctx, &p); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) DeactivatePromotion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := parseID(r, "promotion_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_promotion_id", "promotion_id must be a positive integer")
		return
	}

	if err := h.store.DeactivatePromotion(ctx, id); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
