package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/velstore/storefront/internal/domain"
)

// ListActiveOffers returns offers that are active and inside their validity
// window at the given time, in insertion order. A partial unique index keeps
// at most one active offer per product, so overlap resolution downstream is
// a safety net only.
func (r *Repository) ListActiveOffers(ctx context.Context, now time.Time) ([]domain.ProductOffer, error) {
	query := `
		SELECT id, product_id, kind, discount_value, valid_from, valid_to, active
		FROM product_offers
		WHERE active = 1 AND valid_from <= $1 AND valid_to >= $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var offers []domain.ProductOffer
	for rows.Next() {
		var o domain.ProductOffer
		var kind string
		var value float64
		var from, to string
		if err := rows.Scan(&o.ID, &o.ProductID, &kind, &value, &from, &to, &o.Active); err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		o.Kind = domain.DiscountKind(kind)
		o.DiscountValue = decimalFrom(value)
		if o.ValidFrom, err = time.Parse(time.RFC3339, from); err != nil {
			return nil, fmt.Errorf("failed to parse offer valid_from: %w", err)
		}
		if o.ValidTo, err = time.Parse(time.RFC3339, to); err != nil {
			return nil, fmt.Errorf("failed to parse offer valid_to: %w", err)
		}
		offers = append(offers, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return offers, nil
}
