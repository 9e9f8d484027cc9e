package catalog

import (
	"context"
	"fmt"

	"github.com/velstore/storefront/internal/domain"
)

func (r *Repository) GetAllProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, name, description, price, image_url, discount_percent, created_at
		FROM products
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, image_url, discount_percent, created_at
		FROM products
		WHERE id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	defer rows.Close()

	var product *domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		product = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	p := &domain.Product{}
	var price, discountPercent float64
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&price,
		&p.ImageURL,
		&discountPercent,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	p.Price = decimalFrom(price)
	p.DiscountPercent = decimalFrom(discountPercent)
	return p, nil
}
