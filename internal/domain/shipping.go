package domain

import "github.com/shopspring/decimal"

// ShippingZone is a delivery region with a flat cost. Static reference data,
// read-only at runtime.
type ShippingZone struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	FlatCost         decimal.Decimal `json:"flat_cost"`
	DeliveryEstimate string          `json:"delivery_estimate"`
}
