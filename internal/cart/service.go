// Package cart implements the cart state store: merge-on-add line items,
// quantity updates that cascade to removal, and derived aggregates, backed by
// a persistence port with a cache in front.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/velstore/storefront/internal/catalog"
	"github.com/velstore/storefront/internal/domain"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// ProductReader is the slice of the catalog the cart needs to price its
// summary aggregate.
type ProductReader interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

// Summary is the derived aggregate view of a cart: unit count and goods
// subtotal at current catalog prices.
type Summary struct {
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Service struct {
	repo     Repository
	cache    Cache
	products ProductReader
	sfg      singleflight.Group // Prevents cache stampede
}

func NewService(repo Repository, cache Cache, products ProductReader) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		products: products,
	}
}

// GetCart returns the user's cart, or an empty cart when none is stored yet.
func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errors.Is(errGet, ErrCartNotFound) {
			return &domain.Cart{
				UserID:    userID,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem merges quantity into an existing line for the product, or appends
// a new line. Quantity must be at least 1.
func (s *Service) AddItem(ctx context.Context, userID string, productID int64, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return fmt.Errorf("cannot add product %d: %w", productID, err)
	}

	if err := s.repo.AddItem(ctx, userID, productID, quantity); err != nil {
		log.Printf("repo add item error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// SetQuantity replaces the line's quantity. A quantity below 1 removes the
// line entirely.
func (s *Service) SetQuantity(ctx context.Context, userID string, productID int64, quantity int) error {
	if quantity < 1 {
		return s.RemoveItem(ctx, userID, productID)
	}

	if err := s.repo.SetItemQuantity(ctx, userID, productID, quantity); err != nil {
		log.Printf("repo set quantity error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) RemoveItem(ctx context.Context, userID string, productID int64) error {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		log.Printf("repo remove item error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	err := s.repo.DeleteCart(ctx, userID)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		log.Printf("repo delete cart error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// Summarize computes the derived aggregates at current catalog prices.
func (s *Service) Summarize(ctx context.Context, userID string) (*Summary, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Subtotal: decimal.Zero}
	for _, item := range cart.Items {
		product, err := s.products.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				// product was retired after it was carted; skip the line
				continue
			}
			return nil, fmt.Errorf("failed to price cart line %d: %w", item.ProductID, err)
		}
		summary.ItemCount += item.Quantity
		summary.Subtotal = summary.Subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	summary.Subtotal = summary.Subtotal.Round(2)
	return summary, nil
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
