package domain

import "time"

type Wishlist struct {
	ID        string         `bson:"_id,omitempty" json:"-"`
	UserID    string         `bson:"user_id" json:"user_id"`
	Items     []WishlistItem `bson:"items" json:"items"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at" json:"updated_at"`
}

type WishlistItem struct {
	ProductID int64     `bson:"product_id" json:"product_id"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// Contains reports whether productID is already on the wishlist.
func (w *Wishlist) Contains(productID int64) bool {
	for _, item := range w.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
