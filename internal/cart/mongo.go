package cart

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

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection("carts"),
	}
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

func (m mongoRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

// AddItem merges into an existing line by incrementing its quantity, so a
// product never appears on two lines.
func (m mongoRepository) AddItem(ctx context.Context, userID string, productID int64, quantity int) error {
	now := time.Now()
	filter := bson.M{"user_id": userID}

	var existing domain.Cart
	err := m.collection.FindOne(ctx, filter).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			cart := &domain.Cart{
				UserID:    userID,
				Items:     []domain.CartItem{{ProductID: productID, Quantity: quantity, AddedAt: now}},
				CreatedAt: now,
				UpdatedAt: now,
			}
			if _, err := m.collection.InsertOne(ctx, cart); err != nil {
				return fmt.Errorf("failed to create cart with item: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to check existing cart: %w", err)
	}

	if existing.Find(productID) != nil {
		update := bson.M{
			"$inc": bson.M{"items.$[elem].quantity": quantity},
			"$set": bson.M{"updated_at": now},
		}
		arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{
				bson.M{"elem.product_id": productID},
			},
		})
		if _, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters); err != nil {
			return fmt.Errorf("failed to merge existing item: %w", err)
		}
		return nil
	}

	update := bson.M{
		"$push": bson.M{"items": domain.CartItem{ProductID: productID, Quantity: quantity, AddedAt: now}},
		"$set":  bson.M{"updated_at": now},
	}
	if _, err := m.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to add new item: %w", err)
	}
	return nil
}

func (m mongoRepository) SetItemQuantity(ctx context.Context, userID string, productID int64, quantity int) error {
	filter := bson.M{
		"user_id":          userID,
		"items.product_id": productID,
	}

	update := bson.M{
		"$set": bson.M{
			"items.$[elem].quantity": quantity,
			"updated_at":             time.Now(),
		},
	}

	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.product_id": productID},
		},
	})

	result, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to set item quantity: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (m mongoRepository) RemoveItem(ctx context.Context, userID string, productID int64) error {
	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$pull": bson.M{
			"items": bson.M{"product_id": productID},
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m mongoRepository) DeleteCart(ctx context.Context, userID string) error {
	filter := bson.M{"user_id": userID}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
