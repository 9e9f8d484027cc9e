package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
)

type OrderItem struct {
	ProductID           int64           `json:"product_id"`
	ProductName         string          `json:"product_name"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	ItemDiscountPercent decimal.Decimal `json:"item_discount_percent"`
}

// Order is an append-only snapshot of a completed checkout. It is never
// mutated after creation.
type Order struct {
	ID               uuid.UUID        `json:"id"`
	CheckoutID       uuid.UUID        `json:"checkout_id"`
	IdempotencyKey   string           `json:"idempotency_key"`
	UserID           string           `json:"user_id"`
	Items            []OrderItem      `json:"items"`
	Breakdown        PricingBreakdown `json:"breakdown"`
	PromoCode        string           `json:"promo_code,omitempty"`
	ShippingZoneID   string           `json:"shipping_zone_id"`
	DeliveryEstimate string           `json:"delivery_estimate"`
	PaymentTxnID     string           `json:"payment_txn_id"`
	Status           OrderStatus      `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// TotalAmount is the payable amount of the order.
func (o *Order) TotalAmount() decimal.Decimal {
	return o.Breakdown.GrandTotal
}
