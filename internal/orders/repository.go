package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/velstore/storefront/internal/domain"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrDuplicateCheckout = errors.New("order for this checkout already exists")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OutboxEvent is a pending integration event written in the same transaction
// as its order row.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	Processed   bool
	CreatedAt   time.Time
}

type Repository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
	RunMigrations(*Credentials) error
	Close() error
}
