package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/velstore/storefront/internal/domain"
	"github.com/velstore/storefront/internal/promo"
)

const promotionColumns = `id, code, description, kind, discount_value, min_order_amount,
	max_discount_cap, valid_from, valid_to, usage_limit, used_count, active`

func (r *Repository) ListPromotions(ctx context.Context) ([]domain.Promotion, error) {
	query := fmt.Sprintf(`SELECT %s FROM promotions ORDER BY id`, promotionColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query promotions: %w", err)
	}
	defer rows.Close()

	var promotions []domain.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promotions = append(promotions, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return promotions, nil
}

func (r *Repository) GetPromotion(ctx context.Context, id int64) (*domain.Promotion, error) {
	query := fmt.Sprintf(`SELECT %s FROM promotions WHERE id = $1`, promotionColumns)

	row := r.db.QueryRowContext(ctx, query, id)
	p, err := scanPromotion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPromotionNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePromotion inserts a new promotion. The code is normalized to upper
// case before storage so lookups stay case-insensitive.
func (r *Repository) CreatePromotion(ctx context.Context, p *domain.Promotion) error {
	if err := validatePromotion(p); err != nil {
		return err
	}
	p.Code = promo.NormalizeCode(p.Code)

	query := `
		INSERT INTO promotions (code, description, kind, discount_value, min_order_amount,
			max_discount_cap, valid_from, valid_to, usage_limit, used_count, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10)
	`

	result, err := r.db.ExecContext(ctx, query,
		p.Code,
		p.Description,
		string(p.Kind),
		p.DiscountValue.InexactFloat64(),
		p.MinOrderAmount.InexactFloat64(),
		capValue(p),
		p.ValidFrom.UTC().Format(time.RFC3339),
		p.ValidTo.UTC().Format(time.RFC3339),
		limitValue(p),
		p.Active,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to insert promotion: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read promotion id: %w", err)
	}
	p.ID = id
	return nil
}

func (r *Repository) UpdatePromotion(ctx context.Context, p *domain.Promotion) error {
	if err := validatePromotion(p); err != nil {
		return err
	}
	p.Code = promo.NormalizeCode(p.Code)

	query := `
		UPDATE promotions
		SET code = $1, description = $2, kind = $3, discount_value = $4,
			min_order_amount = $5, max_discount_cap = $6, valid_from = $7,
			valid_to = $8, usage_limit = $9, active = $10
		WHERE id = $11
	`

	result, err := r.db.ExecContext(ctx, query,
		p.Code,
		p.Description,
		string(p.Kind),
		p.DiscountValue.InexactFloat64(),
		p.MinOrderAmount.InexactFloat64(),
		capValue(p),
		p.ValidFrom.UTC().Format(time.RFC3339),
		p.ValidTo.UTC().Format(time.RFC3339),
		limitValue(p),
		p.Active,
		p.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to update promotion: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return ErrPromotionNotFound
	}
	return nil
}

func (r *Repository) DeactivatePromotion(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE promotions SET active = 0 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate promotion: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read deactivate result: %w", err)
	}
	if affected == 0 {
		return ErrPromotionNotFound
	}
	return nil
}

// IncrementUsage records a redemption. The guard keeps used_count from ever
// passing a set usage limit even under concurrent checkouts.
func (r *Repository) IncrementUsage(ctx context.Context, code string) error {
	query := `
		UPDATE promotions
		SET used_count = used_count + 1
		WHERE code = $1 AND (usage_limit IS NULL OR used_count < usage_limit)
	`

	result, err := r.db.ExecContext(ctx, query, promo.NormalizeCode(code))
	if err != nil {
		return fmt.Errorf("failed to increment promotion usage: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read increment result: %w", err)
	}
	if affected == 0 {
		return ErrPromotionNotFound
	}
	return nil
}

func validatePromotion(p *domain.Promotion) error {
	if strings.TrimSpace(p.Code) == "" {
		return errors.New("promotion code is required")
	}
	switch p.Kind {
	case domain.DiscountPercentage, domain.DiscountFixed, domain.DiscountFreeShipping:
	default:
		return fmt.Errorf("unknown discount kind %q", p.Kind)
	}
	if p.DiscountValue.IsNegative() {
		return errors.New("discount value must not be negative")
	}
	if p.MinOrderAmount.IsNegative() {
		return errors.New("minimum order amount must not be negative")
	}
	if p.ValidTo.Before(p.ValidFrom) {
		return errors.New("valid_to must not precede valid_from")
	}
	if p.UsageLimit != nil && *p.UsageLimit < 0 {
		return errors.New("usage limit must not be negative")
	}
	return nil
}

func capValue(p *domain.Promotion) any {
	if p.MaxDiscountCap == nil {
		return nil
	}
	return p.MaxDiscountCap.InexactFloat64()
}

func limitValue(p *domain.Promotion) any {
	if p.UsageLimit == nil {
		return nil
	}
	return *p.UsageLimit
}

func scanPromotion(row rowScanner) (*domain.Promotion, error) {
	p := &domain.Promotion{}
	var kind string
	var value, minOrder float64
	var capCol sql.NullFloat64
	var limit sql.NullInt64
	var from, to string

	err := row.Scan(
		&p.ID,
		&p.Code,
		&p.Description,
		&kind,
		&value,
		&minOrder,
		&capCol,
		&from,
		&to,
		&limit,
		&p.UsedCount,
		&p.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan promotion: %w", err)
	}

	p.Kind = domain.DiscountKind(kind)
	p.DiscountValue = decimalFrom(value)
	p.MinOrderAmount = decimalFrom(minOrder)
	p.MaxDiscountCap = nullableDecimal(capCol)
	p.UsageLimit = nullableInt(limit)
	if p.ValidFrom, err = time.Parse(time.RFC3339, from); err != nil {
		return nil, fmt.Errorf("failed to parse promotion valid_from: %w", err)
	}
	if p.ValidTo, err = time.Parse(time.RFC3339, to); err != nil {
		return nil, fmt.Errorf("failed to parse promotion valid_to: %w", err)
	}
	return p, nil
}
