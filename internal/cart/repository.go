package cart

import (
	"context"
	"errors"

	"github.com/velstore/storefront/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

// Repository defines the interface for cart data operations. Consumers define
// this interface, not the MongoDB implementation.
type Repository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, productID int64, quantity int) error
	SetItemQuantity(ctx context.Context, userID string, productID int64, quantity int) error
	RemoveItem(ctx context.Context, userID string, productID int64) error
	DeleteCart(ctx context.Context, userID string) error
}
