// Package wishlist stores per-user product wishlists. Same shape as the cart
// store minus quantities.
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/velstore/storefront/internal/domain"
)

var (
	ErrWishlistNotFound = errors.New("wishlist not found")
	ErrItemNotFound     = errors.New("item not found in wishlist")
)

type Repository interface {
	Get(ctx context.Context, userID string) (*domain.Wishlist, error)
	Add(ctx context.Context, userID string, productID int64) error
	Remove(ctx context.Context, userID string, productID int64) error
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{collection: db.Collection("wishlists")}
}

func (m mongoRepository) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	var list domain.Wishlist

	err := m.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&list)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrWishlistNotFound
		}
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	return &list, nil
}

// Add is idempotent: wishing for a product twice keeps a single entry.
func (m mongoRepository) Add(ctx context.Context, userID string, productID int64) error {
	now := time.Now()
	filter := bson.M{"user_id": userID}

	var existing domain.Wishlist
	err := m.collection.FindOne(ctx, filter).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			list := &domain.Wishlist{
				UserID:    userID,
				Items:     []domain.WishlistItem{{ProductID: productID, AddedAt: now}},
				CreatedAt: now,
				UpdatedAt: now,
			}
			if _, err := m.collection.InsertOne(ctx, list); err != nil {
				return fmt.Errorf("failed to create wishlist: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to check existing wishlist: %w", err)
	}

	if existing.Contains(productID) {
		return nil
	}

	update := bson.M{
		"$push": bson.M{"items": domain.WishlistItem{ProductID: productID, AddedAt: now}},
		"$set":  bson.M{"updated_at": now},
	}
	if _, err := m.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

func (m mongoRepository) Remove(ctx context.Context, userID string, productID int64) error {
	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$pull": bson.M{"items": bson.M{"product_id": productID}},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrWishlistNotFound
	}
	return nil
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create wishlist indexes: %w", err)
	}
	return nil
}

// CartAdder is the slice of the cart service move-to-cart needs.
type CartAdder interface {
	AddItem(ctx context.Context, userID string, productID int64, quantity int) error
}

type Service struct {
	repo Repository
	cart CartAdder
}

func NewService(repo Repository, cart CartAdder) *Service {
	return &Service{repo: repo, cart: cart}
}

// Get returns the user's wishlist, empty when none is stored yet.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	list, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrWishlistNotFound) {
		return &domain.Wishlist{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) Add(ctx context.Context, userID string, productID int64) error {
	return s.repo.Add(ctx, userID, productID)
}

func (s *Service) Remove(ctx context.Context, userID string, productID int64) error {
	return s.repo.Remove(ctx, userID, productID)
}

// MoveToCart adds the wished product to the cart with quantity 1, then drops
// it from the wishlist. The cart add runs first so a failure leaves the wish
// intact.
func (s *Service) MoveToCart(ctx context.Context, userID string, productID int64) error {
	list, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !list.Contains(productID) {
		return ErrItemNotFound
	}

	if err := s.cart.AddItem(ctx, userID, productID, 1); err != nil {
		return fmt.Errorf("failed to move item to cart: %w", err)
	}
	return s.repo.Remove(ctx, userID, productID)
}
