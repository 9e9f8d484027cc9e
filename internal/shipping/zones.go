// Package shipping holds the static shipping-zone reference data. The table
// is small and immutable within a session, so it lives in memory.
package shipping

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/velstore/storefront/internal/domain"
)

var ErrZoneNotFound = errors.New("shipping zone not found")

// DefaultFreeShippingThreshold is the goods amount above which shipping is
// waived regardless of zone. Overridable via configuration.
var DefaultFreeShippingThreshold = decimal.NewFromInt(1000)

type Table struct {
	zones map[string]domain.ShippingZone
	order []string
}

// NewTable builds a lookup table keyed by zone id, preserving insert order
// for listing.
func NewTable(zones []domain.ShippingZone) *Table {
	t := &Table{zones: make(map[string]domain.ShippingZone, len(zones))}
	for _, z := range zones {
		if _, exists := t.zones[z.ID]; exists {
			continue
		}
		t.zones[z.ID] = z
		t.order = append(t.order, z.ID)
	}
	return t
}

// DefaultTable returns the built-in zone list.
func DefaultTable() *Table {
	return NewTable([]domain.ShippingZone{
		{ID: "cairo", Name: "Cairo", FlatCost: decimal.NewFromInt(25), DeliveryEstimate: "1-2 days"},
		{ID: "giza", Name: "Giza", FlatCost: decimal.NewFromInt(35), DeliveryEstimate: "2-3 days"},
		{ID: "alexandria", Name: "Alexandria", FlatCost: decimal.NewFromInt(45), DeliveryEstimate: "2-4 days"},
		{ID: "delta", Name: "Nile Delta", FlatCost: decimal.NewFromInt(55), DeliveryEstimate: "3-5 days"},
		{ID: "upper-egypt", Name: "Upper Egypt", FlatCost: decimal.NewFromInt(70), DeliveryEstimate: "4-7 days"},
	})
}

func (t *Table) Lookup(id string) (domain.ShippingZone, error) {
	zone, ok := t.zones[id]
	if !ok {
		return domain.ShippingZone{}, ErrZoneNotFound
	}
	return zone, nil
}

func (t *Table) List() []domain.ShippingZone {
	out := make([]domain.ShippingZone, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.zones[id])
	}
	return out
}

// Zones exposes the table as a map for the pricing calculator.
func (t *Table) Zones() map[string]domain.ShippingZone {
	return t.zones
}
