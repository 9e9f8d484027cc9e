package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velstore/storefront/internal/domain"
	"github.com/velstore/storefront/internal/pricing"
)

var oneHundred = decimal.NewFromInt(100)

// snapshotLines captures current catalog prices for every cart item. A
// product-level offer and the catalog markdown do not stack; the larger
// per-unit discount wins and is folded into the line's discount percent.
func (s *Service) snapshotLines(ctx context.Context, items []domain.CartItem, now time.Time) ([]domain.LineItem, error) {
	offers, err := s.catalog.ListActiveOffers(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list product offers: %w", err)
	}

	lines := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to get product %d: %w", item.ProductID, err)
		}

		discountPercent := product.DiscountPercent
		if _, perUnit := pricing.ResolveProductOffer(item.ProductID, product.Price, offers, now); perUnit.IsPositive() && product.Price.IsPositive() {
			offerPercent := perUnit.Div(product.Price).Mul(oneHundred)
			if offerPercent.GreaterThan(discountPercent) {
				discountPercent = offerPercent
			}
		}

		lines = append(lines, domain.LineItem{
			ProductID:           item.ProductID,
			ProductName:         product.Name,
			UnitPrice:           product.Price,
			Quantity:            item.Quantity,
			ItemDiscountPercent: discountPercent,
		})
	}

	return lines, nil
}
