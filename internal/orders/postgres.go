package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/velstore/storefront/internal/domain"
)

const eventTypeOrderPlaced = "order.placed"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(cred *Credentials) (*PostgresRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// CreateOrder inserts the order row and its outbox event in one transaction,
// so an order never exists without its order.placed event.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	eventPayload, err := json.Marshal(map[string]interface{}{
		"order_id":     order.ID,
		"checkout_id":  order.CheckoutID,
		"user_id":      order.UserID,
		"grand_total":  order.Breakdown.GrandTotal,
		"currency":     order.Breakdown.Currency,
		"item_count":   len(order.Items),
		"completed_at": order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `INSERT INTO orders
		(id, checkout_id, idempotency_key, user_id, subtotal, item_discount_total,
		 shipping_cost, promo_discount, grand_total, currency, promo_code,
		 shipping_zone_id, delivery_estimate, payment_txn_id, status, items,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())`

	_, insertErr := tx.ExecContext(ctx, orderQuery,
		order.ID,
		order.CheckoutID,
		order.IdempotencyKey,
		order.UserID,
		order.Breakdown.Subtotal,
		order.Breakdown.ItemDiscountTotal,
		order.Breakdown.ShippingCost,
		order.Breakdown.PromoDiscount,
		order.Breakdown.GrandTotal,
		order.Breakdown.Currency,
		order.PromoCode,
		order.ShippingZoneID,
		order.DeliveryEstimate,
		order.PaymentTxnID,
		order.Status,
		itemsJSON)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateCheckout
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}

	eventQuery := `INSERT INTO outbox_events (aggregate_id, event_type, payload)
		VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, eventQuery, order.ID.String(), eventTypeOrderPlaced, eventPayload); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const orderColumns = `id, checkout_id, idempotency_key, user_id, subtotal,
	item_discount_total, shipping_cost, promo_discount, grand_total, currency,
	promo_code, shipping_zone_id, delivery_estimate, payment_txn_id, status,
	items, created_at, updated_at`

func (r *PostgresRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.queryOne(ctx, query, id)
}

func (r *PostgresRepository) GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE idempotency_key = $1`
	return r.queryOne(ctx, query, key)
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, arg interface{}) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return order, nil
}

func (r *PostgresRepository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

func (r *PostgresRepository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, processed, created_at
	          FROM outbox_events WHERE processed = FALSE ORDER BY id LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &ev.EventType, &ev.Payload, &ev.Processed, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

func (r *PostgresRepository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET processed = TRUE, processed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("outbox event %d not found", id)
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order         domain.Order
		itemsJSON     []byte
		subtotal      decimal.NullDecimal
		itemDiscount  decimal.NullDecimal
		shipping      decimal.NullDecimal
		promoDiscount decimal.NullDecimal
		grandTotal    decimal.NullDecimal
	)

	err := row.Scan(
		&order.ID,
		&order.CheckoutID,
		&order.IdempotencyKey,
		&order.UserID,
		&subtotal,
		&itemDiscount,
		&shipping,
		&promoDiscount,
		&grandTotal,
		&order.Breakdown.Currency,
		&order.PromoCode,
		&order.ShippingZoneID,
		&order.DeliveryEstimate,
		&order.PaymentTxnID,
		&order.Status,
		&itemsJSON,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Breakdown.Subtotal = subtotal.Decimal
	order.Breakdown.ItemDiscountTotal = itemDiscount.Decimal
	order.Breakdown.ShippingCost = shipping.Decimal
	order.Breakdown.PromoDiscount = promoDiscount.Decimal
	order.Breakdown.GrandTotal = grandTotal.Decimal

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}

	return &order, nil
}
