// Package pricing contains the pure order-pricing calculations: subtotal,
// item-level markdowns, product offers, zone shipping cost, promo discounts
// and the grand total. Nothing here touches storage or the clock; callers
// inject reference data and "now".
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velstore/storefront/internal/domain"
)

var (
	ErrInvalidInput = errors.New("invalid pricing input")
	ErrUnknownZone  = errors.New("unknown shipping zone")
)

var oneHundred = decimal.NewFromInt(100)

// ValidateItems rejects malformed line items instead of coercing them.
func ValidateItems(items []domain.LineItem) error {
	for i, item := range items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: line %d quantity %d < 1", ErrInvalidInput, i, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: line %d negative unit price %s", ErrInvalidInput, i, item.UnitPrice)
		}
		if item.ItemDiscountPercent.IsNegative() || item.ItemDiscountPercent.GreaterThan(oneHundred) {
			return fmt.Errorf("%w: line %d discount percent %s outside [0,100]", ErrInvalidInput, i, item.ItemDiscountPercent)
		}
	}
	return nil
}

// ComputeSubtotal sums unitPrice * quantity over all lines. No rounding is
// applied mid-sum.
func ComputeSubtotal(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ComputeItemDiscountTotal sums the markdowns already baked into the product
// records, distinct from promo-code discounts.
func ComputeItemDiscountTotal(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line.Mul(item.ItemDiscountPercent).Div(oneHundred))
	}
	return total
}

// ResolveProductOffer scans offers in order and returns the first applicable
// one for productID together with the effective per-unit discount amount.
// Returns (nil, zero) when no offer applies. A fixed offer never discounts
// below a zero unit price.
func ResolveProductOffer(productID int64, unitPrice decimal.Decimal, offers []domain.ProductOffer, now time.Time) (*domain.ProductOffer, decimal.Decimal) {
	for i := range offers {
		offer := &offers[i]
		if offer.ProductID != productID || !offer.Applicable(now) {
			continue
		}
		switch offer.Kind {
		case domain.DiscountPercentage:
			return offer, unitPrice.Mul(offer.DiscountValue).Div(oneHundred)
		case domain.DiscountFixed:
			if offer.DiscountValue.GreaterThan(unitPrice) {
				return offer, unitPrice
			}
			return offer, offer.DiscountValue
		default:
			return offer, decimal.Zero
		}
	}
	return nil, decimal.Zero
}

// ComputeShippingCost prices delivery for goodsAmount to zoneID. Above the
// free-shipping threshold the cost is zero regardless of zone. An empty
// zoneID means no zone was selected yet and also prices as zero; a non-empty
// unknown zone is an input error.
func ComputeShippingCost(zoneID string, goodsAmount decimal.Decimal, zones map[string]domain.ShippingZone, freeShippingThreshold decimal.Decimal) (decimal.Decimal, error) {
	if goodsAmount.GreaterThanOrEqual(freeShippingThreshold) {
		return decimal.Zero, nil
	}
	if zoneID == "" {
		return decimal.Zero, nil
	}
	zone, ok := zones[zoneID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownZone, zoneID)
	}
	return zone.FlatCost, nil
}

// ComputeDiscountAmount converts a promotion into a monetary discount against
// goodsAmount. Percentage discounts are clamped to the promotion's cap when
// one is set; fixed discounts are clamped to goodsAmount so an intermediate
// value can never go negative. FreeShipping contributes no monetary discount,
// the caller zeroes shipping instead.
func ComputeDiscountAmount(p *domain.Promotion, goodsAmount decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	switch p.Kind {
	case domain.DiscountPercentage:
		amount := goodsAmount.Mul(p.DiscountValue).Div(oneHundred)
		if p.MaxDiscountCap != nil && amount.GreaterThan(*p.MaxDiscountCap) {
			return *p.MaxDiscountCap
		}
		return amount
	case domain.DiscountFixed:
		if p.DiscountValue.GreaterThan(goodsAmount) {
			return goodsAmount
		}
		return p.DiscountValue
	default:
		return decimal.Zero
	}
}

// ComputeGrandTotal combines the components, flooring at zero no matter how
// large the promo discount is.
func ComputeGrandTotal(goodsAmount, shippingCost, promoDiscount decimal.Decimal) decimal.Decimal {
	total := goodsAmount.Add(shippingCost).Sub(promoDiscount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// QuoteInput carries everything needed to price a cart. Promotion must
// already be validated (or nil); validation lives in the promo package.
type QuoteInput struct {
	Items                 []domain.LineItem
	ZoneID                string
	Promotion             *domain.Promotion
	Zones                 map[string]domain.ShippingZone
	FreeShippingThreshold decimal.Decimal
	Currency              string
}

// BuildBreakdown prices a full cart. The goods amount (subtotal minus item
// markdowns) is what the free-shipping threshold was checked against by the
// caller validating the promotion, and is what discounts apply to here.
// All reported figures are rounded to 2 decimal places.
func BuildBreakdown(in QuoteInput) (domain.PricingBreakdown, error) {
	if err := ValidateItems(in.Items); err != nil {
		return domain.PricingBreakdown{}, err
	}

	subtotal := ComputeSubtotal(in.Items)
	itemDiscount := ComputeItemDiscountTotal(in.Items)
	goods := subtotal.Sub(itemDiscount)

	shippingCost, err := ComputeShippingCost(in.ZoneID, goods, in.Zones, in.FreeShippingThreshold)
	if err != nil {
		return domain.PricingBreakdown{}, err
	}

	promoDiscount := decimal.Zero
	if in.Promotion != nil {
		if in.Promotion.Kind == domain.DiscountFreeShipping {
			shippingCost = decimal.Zero
		} else {
			promoDiscount = ComputeDiscountAmount(in.Promotion, goods)
		}
	}

	return domain.PricingBreakdown{
		Subtotal:          subtotal.Round(2),
		ItemDiscountTotal: itemDiscount.Round(2),
		ShippingCost:      shippingCost.Round(2),
		PromoDiscount:     promoDiscount.Round(2),
		GrandTotal:        ComputeGrandTotal(goods, shippingCost, promoDiscount).Round(2),
		Currency:          in.Currency,
	}, nil
}
