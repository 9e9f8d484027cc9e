package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/velstore/storefront/internal/domain"
	"github.com/velstore/storefront/internal/shipping"
)

type ProductReader interface {
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListActiveOffers(ctx context.Context, now time.Time) ([]domain.ProductOffer, error)
}

type ProductHandler struct {
	catalog ProductReader
	zones   *shipping.Table
	timeout time.Duration
}

func NewProductHandler(catalog ProductReader, zones *shipping.Table, timeout time.Duration) *ProductHandler {
	return &ProductHandler{catalog: catalog, zones: zones, timeout: timeout}
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.GetAllProducts(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := parseID(r, "product_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	product, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	offers, err := h.catalog.ListActiveOffers(ctx, time.Now())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, offers)
}

func (h *ProductHandler) ListShippingZones(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.zones.List())
}

func parseID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
