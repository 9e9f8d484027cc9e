package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountKind enumerates the supported discount strategies.
type DiscountKind string

const (
	DiscountPercentage   DiscountKind = "percentage"
	DiscountFixed        DiscountKind = "fixed"
	DiscountFreeShipping DiscountKind = "free_shipping"
)

// Promotion is a coupon redeemed by code at checkout. Codes are stored and
// matched upper-cased, so lookups are case-insensitive.
type Promotion struct {
	ID             int64            `json:"id"`
	Code           string           `json:"code"`
	Description    string           `json:"description"`
	Kind           DiscountKind     `json:"kind"`
	DiscountValue  decimal.Decimal  `json:"discount_value"`
	MinOrderAmount decimal.Decimal  `json:"min_order_amount"`
	MaxDiscountCap *decimal.Decimal `json:"max_discount_cap,omitempty"`
	ValidFrom      time.Time        `json:"valid_from"`
	ValidTo        time.Time        `json:"valid_to"`
	UsageLimit     *int             `json:"usage_limit,omitempty"`
	UsedCount      int              `json:"used_count"`
	Active         bool             `json:"active"`
}

// WithinWindow reports whether now falls inside the validity window.
func (p *Promotion) WithinWindow(now time.Time) bool {
	return !now.Before(p.ValidFrom) && !now.After(p.ValidTo)
}

// UsageExhausted reports whether a usage limit is set and already reached.
func (p *Promotion) UsageExhausted() bool {
	return p.UsageLimit != nil && p.UsedCount >= *p.UsageLimit
}

// ProductOffer is a standing per-product discount, independent of any code.
// At most one active offer per product is enforced at data-entry time.
type ProductOffer struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"product_id"`
	Kind          DiscountKind    `json:"kind"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	ValidFrom     time.Time       `json:"valid_from"`
	ValidTo       time.Time       `json:"valid_to"`
	Active        bool            `json:"active"`
}

// Applicable reports whether the offer is active and inside its window.
func (o *ProductOffer) Applicable(now time.Time) bool {
	return o.Active && !now.Before(o.ValidFrom) && !now.After(o.ValidTo)
}
