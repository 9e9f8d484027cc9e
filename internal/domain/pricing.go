package domain

import "github.com/shopspring/decimal"

// LineItem is a cart line with its price captured from the catalog.
// Pricing operates on these snapshots, never on live catalog rows, so a
// quote stays stable while the admin edits products.
type LineItem struct {
	ProductID           int64           `json:"product_id"`
	ProductName         string          `json:"product_name"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Quantity            int             `json:"quantity"`
	ItemDiscountPercent decimal.Decimal `json:"item_discount_percent"`
}

// PricingBreakdown is the monetary result of pricing a cart. It is computed
// fresh on every request and only persisted as part of an Order.
type PricingBreakdown struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	ItemDiscountTotal decimal.Decimal `json:"item_discount_total"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	PromoDiscount     decimal.Decimal `json:"promo_discount"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
	Currency          string          `json:"currency"`
}
