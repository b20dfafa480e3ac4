package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role values stored on a user document.
const (
	RoleCustomer = 0
	RoleAdmin    = 1
)

// User is a customer account. Cart and orders live embedded on the user
// document; mutations are single-document writes (last-write-wins).
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"` // unique index
	Password  string             `bson:"password" json:"-"`  // bcrypt hash, never serialised
	Role      int                `bson:"role" json:"role"`   // RoleCustomer by default
	Cart      []CartItem         `bson:"cart" json:"cart"`
	Orders    []Order            `bson:"orders" json:"orders"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// CartItem is one line of a user's cart. The cart is replaced wholesale on
// update, never patched item by item.
type CartItem struct {
	ProductID string  `bson:"product_id" json:"product_id" validate:"required"`
	Title     string  `bson:"title" json:"title" validate:"required"`
	Price     float64 `bson:"price" json:"price" validate:"required"`
	Quantity  int     `bson:"quantity" json:"quantity" validate:"gte=0"`
	Images    Image   `bson:"images" json:"images"`
	Comment   string  `bson:"comment" json:"comment"`
}

// Order statuses. Transitions are not validated; any string write succeeds.
const (
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
)

// Order is a completed purchase embedded in the user's orders sequence.
type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title     string             `bson:"title" json:"title"`
	Price     float64            `bson:"price" json:"price"`
	OrderDate time.Time          `bson:"order_date" json:"orderDate"`
	Status    string             `bson:"status" json:"status"`
}

// Image references an asset on the remote store.
type Image struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"public_id" json:"public_id"`
}
