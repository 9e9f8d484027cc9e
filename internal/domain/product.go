package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog row. DiscountPercent is a markdown baked into the
// product record, distinct from promo codes and product offers.
type Product struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	ImageURL        string          `json:"image_url"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	CreatedAt       time.Time       `json:"created_at"`
}
