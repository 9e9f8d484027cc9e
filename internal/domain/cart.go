package domain

import "time"

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

type CartItem struct {
	ProductID int64     `bson:"product_id" json:"product_id"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// ItemCount returns the total number of units across all lines.
func (c *Cart) ItemCount() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Find returns the line for productID, or nil if the cart has none.
func (c *Cart) Find(productID int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}
