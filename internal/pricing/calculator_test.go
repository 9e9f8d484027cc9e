package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velstore/storefront/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testZones() map[string]domain.ShippingZone {
	return map[string]domain.ShippingZone{
		"cairo": {ID: "cairo", Name: "Cairo", FlatCost: dec("25"), DeliveryEstimate: "1-2 days"},
		"giza":  {ID: "giza", Name: "Giza", FlatCost: dec("35"), DeliveryEstimate: "2-3 days"},
	}
}

func TestComputeSubtotal(t *testing.T) {
	items := []domain.LineItem{
		{ProductID: 1, UnitPrice: dec("100"), Quantity: 2},
		{ProductID: 2, UnitPrice: dec("49.99"), Quantity: 3},
	}
	assert.True(t, ComputeSubtotal(items).Equal(dec("349.97")))
}

func TestComputeSubtotal_OrderIndependent(t *testing.T) {
	a := []domain.LineItem{
		{ProductID: 1, UnitPrice: dec("10.5"), Quantity: 1},
		{ProductID: 2, UnitPrice: dec("3.25"), Quantity: 4},
	}
	b := []domain.LineItem{a[1], a[0]}
	assert.True(t, ComputeSubtotal(a).Equal(ComputeSubtotal(b)))
}

func TestComputeSubtotal_EmptyCart(t *testing.T) {
	assert.True(t, ComputeSubtotal(nil).IsZero())
}

func TestComputeItemDiscountTotal(t *testing.T) {
	items := []domain.LineItem{
		{ProductID: 1, UnitPrice: dec("100"), Quantity: 2, ItemDiscountPercent: dec("10")},
		{ProductID: 2, UnitPrice: dec("50"), Quantity: 1, ItemDiscountPercent: dec("0")},
	}
	assert.True(t, ComputeItemDiscountTotal(items).Equal(dec("20")))
}

func TestValidateItems(t *testing.T) {
	tests := []struct {
		name    string
		item    domain.LineItem
		wantErr bool
	}{
		{"valid", domain.LineItem{ProductID: 1, UnitPrice: dec("10"), Quantity: 1}, false},
		{"zero quantity", domain.LineItem{ProductID: 1, UnitPrice: dec("10"), Quantity: 0}, true},
		{"negative quantity", domain.LineItem{ProductID: 1, UnitPrice: dec("10"), Quantity: -2}, true},
		{"negative price", domain.LineItem{ProductID: 1, UnitPrice: dec("-1"), Quantity: 1}, true},
		{"discount above 100", domain.LineItem{ProductID: 1, UnitPrice: dec("10"), Quantity: 1, ItemDiscountPercent: dec("101")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItems([]domain.LineItem{tt.item})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveProductOffer_FirstApplicableWins(t *testing.T) {
	now := time.Now()
	offers := []domain.ProductOffer{
		{ProductID: 1, Kind: domain.DiscountPercentage, DiscountValue: dec("50"), ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(-time.Minute), Active: true},
		{ProductID: 1, Kind: domain.DiscountPercentage, DiscountValue: dec("10"), ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour), Active: true},
		{ProductID: 1, Kind: domain.DiscountPercentage, DiscountValue: dec("20"), ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour), Active: true},
	}

	offer, perUnit := ResolveProductOffer(1, dec("200"), offers, now)
	require.NotNil(t, offer)
	assert.True(t, offer.DiscountValue.Equal(dec("10")), "expired offer skipped, first live offer wins")
	assert.True(t, perUnit.Equal(dec("20")))
}

func TestResolveProductOffer_FixedCappedAtUnitPrice(t *testing.T) {
	now := time.Now()
	offers := []domain.ProductOffer{
		{ProductID: 7, Kind: domain.DiscountFixed, DiscountValue: dec("80"), ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour), Active: true},
	}

	offer, perUnit := ResolveProductOffer(7, dec("59.99"), offers, now)
	require.NotNil(t, offer)
	assert.True(t, perUnit.Equal(dec("59.99")), "fixed offer never discounts below zero unit price")
}

func TestResolveProductOffer_NoMatch(t *testing.T) {
	now := time.Now()
	offers := []domain.ProductOffer{
		{ProductID: 1, Kind: domain.DiscountFixed, DiscountValue: dec("5"), ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour), Active: false},
	}

	offer, perUnit := ResolveProductOffer(1, dec("10"), offers, now)
	assert.Nil(t, offer)
	assert.True(t, perUnit.IsZero())
}

func TestComputeShippingCost_KnownZone(t *testing.T) {
	cost, err := ComputeShippingCost("cairo", dec("200"), testZones(), dec("1000"))
	require.NoError(t, err)
	assert.True(t, cost.Equal(dec("25")))
}

func TestComputeShippingCost_FreeAboveThreshold(t *testing.T) {
	cost, err := ComputeShippingCost("cairo", dec("200"), testZones(), dec("150"))
	require.NoError(t, err)
	assert.True(t, cost.IsZero())

	// exactly at the threshold is free too
	cost, err = ComputeShippingCost("giza", dec("150"), testZones(), dec("150"))
	require.NoError(t, err)
	assert.True(t, cost.IsZero())
}

func TestComputeShippingCost_NoZoneSelected(t *testing.T) {
	cost, err := ComputeShippingCost("", dec("200"), testZones(), dec("1000"))
	require.NoError(t, err)
	assert.True(t, cost.IsZero())
}

func TestComputeShippingCost_UnknownZone(t *testing.T) {
	_, err := ComputeShippingCost("atlantis", dec("200"), testZones(), dec("1000"))
	assert.ErrorIs(t, err, ErrUnknownZone)
}

func TestComputeDiscountAmount_PercentageWithCap(t *testing.T) {
	cap := dec("50")
	promo := &domain.Promotion{Kind: domain.DiscountPercentage, DiscountValue: dec("10"), MaxDiscountCap: &cap}

	// raw discount 100 capped to 50
	assert.True(t, ComputeDiscountAmount(promo, dec("1000")).Equal(dec("50")))
	// under the cap the raw value is returned
	assert.True(t, ComputeDiscountAmount(promo, dec("200")).Equal(dec("20")))
}

func TestComputeDiscountAmount_CapHolds(t *testing.T) {
	cap := dec("50")
	promo := &domain.Promotion{Kind: domain.DiscountPercentage, DiscountValue: dec("25"), MaxDiscountCap: &cap}

	for _, goods := range []string{"0", "100", "199.99", "200", "10000"} {
		amount := ComputeDiscountAmount(promo, dec(goods))
		assert.True(t, amount.LessThanOrEqual(cap), "goods=%s amount=%s", goods, amount)
	}
}

func TestComputeDiscountAmount_FixedClampedToGoods(t *testing.T) {
	promo := &domain.Promotion{Kind: domain.DiscountFixed, DiscountValue: dec("100")}
	assert.True(t, ComputeDiscountAmount(promo, dec("60")).Equal(dec("60")))
	assert.True(t, ComputeDiscountAmount(promo, dec("150")).Equal(dec("100")))
}

func TestComputeDiscountAmount_FreeShippingIsZero(t *testing.T) {
	promo := &domain.Promotion{Kind: domain.DiscountFreeShipping, DiscountValue: dec("1")}
	assert.True(t, ComputeDiscountAmount(promo, dec("500")).IsZero())
}

func TestComputeGrandTotal_FloorAtZero(t *testing.T) {
	assert.True(t, ComputeGrandTotal(dec("10"), dec("0"), dec("100")).IsZero())
	assert.True(t, ComputeGrandTotal(dec("200"), dec("25"), dec("50")).Equal(dec("175")))
}

func TestBuildBreakdown_NoPromo(t *testing.T) {
	// cart of 2x100 to cairo, threshold far away
	breakdown, err := BuildBreakdown(QuoteInput{
		Items: []domain.LineItem{
			{ProductID: 1, UnitPrice: dec("100"), Quantity: 2},
		},
		ZoneID:                "cairo",
		Zones:                 testZones(),
		FreeShippingThreshold: dec("1000"),
		Currency:              "USD",
	})
	require.NoError(t, err)
	assert.True(t, breakdown.Subtotal.Equal(dec("200")))
	assert.True(t, breakdown.ShippingCost.Equal(dec("25")))
	assert.True(t, breakdown.GrandTotal.Equal(dec("225")))
}

func TestBuildBreakdown_FreeShippingThreshold(t *testing.T) {
	breakdown, err := BuildBreakdown(QuoteInput{
		Items: []domain.LineItem{
			{ProductID: 1, UnitPrice: dec("100"), Quantity: 2},
		},
		ZoneID:                "cairo",
		Zones:                 testZones(),
		FreeShippingThreshold: dec("150"),
		Currency:              "USD",
	})
	require.NoError(t, err)
	assert.True(t, breakdown.ShippingCost.IsZero())
	assert.True(t, breakdown.GrandTotal.Equal(dec("200")))
}

func TestBuildBreakdown_PercentagePromoCapped(t *testing.T) {
	cap := dec("50")
	breakdown, err := BuildBreakdown(QuoteInput{
		Items: []domain.LineItem{
			{ProductID: 1, UnitPrice: dec("500"), Quantity: 2},
		},
		ZoneID: "cairo",
		Promotion: &domain.Promotion{
			Code:           "WELCOME10",
			Kind:           domain.DiscountPercentage,
			DiscountValue:  dec("10"),
			MaxDiscountCap: &cap,
			MinOrderAmount: dec("100"),
		},
		Zones:                 testZones(),
		FreeShippingThreshold: dec("5000"),
		Currency:              "USD",
	})
	require.NoError(t, err)
	assert.True(t, breakdown.PromoDiscount.Equal(dec("50")), "raw 100 capped to 50")
	assert.True(t, breakdown.GrandTotal.Equal(dec("1000").Add(dec("25")).Sub(dec("50"))))
}

func TestBuildBreakdown_FreeShippingPromo(t *testing.T) {
	breakdown, err := BuildBreakdown(QuoteInput{
		Items: []domain.LineItem{
			{ProductID: 1, UnitPrice: dec("100"), Quantity: 1},
		},
		ZoneID: "giza",
		Promotion: &domain.Promotion{
			Code: "SHIPFREE",
			Kind: domain.DiscountFreeShipping,
		},
		Zones:                 testZones(),
		FreeShippingThreshold: dec("1000"),
		Currency:              "USD",
	})
	require.NoError(t, err)
	assert.True(t, breakdown.ShippingCost.IsZero())
	assert.True(t, breakdown.PromoDiscount.IsZero())
	assert.True(t, breakdown.GrandTotal.Equal(dec("100")))
}

func TestBuildBreakdown_ItemMarkdownsReduceGoods(t *testing.T) {
	breakdown, err := BuildBreakdown(QuoteInput{
		Items: []domain.LineItem{
			{ProductID: 1, UnitPrice: dec("100"), Quantity: 2, ItemDiscountPercent: dec("25")},
		},
		ZoneID:                "cairo",
		Zones:                 testZones(),
		FreeShippingThreshold: dec("1000"),
		Currency:              "USD",
	})
	require.NoError(t, err)
	assert.True(t, breakdown.Subtotal.Equal(dec("200")))
	assert.True(t, breakdown.ItemDiscountTotal.Equal(dec("50")))
	// goods 150 + shipping 25
	assert.True(t, breakdown.GrandTotal.Equal(dec("175")))
}

func TestBuildBreakdown_InvalidItems(t *testing.T) {
	_, err := BuildBreakdown(QuoteInput{
		Items: []domain.LineItem{{ProductID: 1, UnitPrice: dec("10"), Quantity: 0}},
		Zones: testZones(),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
