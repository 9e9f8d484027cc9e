// Package catalog is the SQLite-backed reference-data store: products, their
// standing offers, and the promotion catalog the admin UI edits.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/velstore/storefront/internal/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrDuplicateCode     = errors.New("promotion code already exists")
	ErrOfferConflict     = errors.New("product already has an active offer")
)

type Repository struct {
	db *sql.DB
}

type Store interface {
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListActiveOffers(ctx context.Context, now time.Time) ([]domain.ProductOffer, error)
	ListPromotions(ctx context.Context) ([]domain.Promotion, error)
	GetPromotion(ctx context.Context, id int64) (*domain.Promotion, error)
	CreatePromotion(ctx context.Context, p *domain.Promotion) error
	UpdatePromotion(ctx context.Context, p *domain.Promotion) error
	DeactivatePromotion(ctx context.Context, id int64) error
	IncrementUsage(ctx context.Context, code string) error
	Close() error
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// decimalFrom converts a REAL column value. Money columns are written from
// decimals, so the float is exact to 2 places.
func decimalFrom(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func nullableDecimal(n sql.NullFloat64) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := decimal.NewFromFloat(n.Float64)
	return &d
}

func nullableInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
