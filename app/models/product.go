package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. Titles are stored lowercase so listing
// filters match case-insensitively.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ProductID   string             `bson:"product_id" json:"product_id"` // external code, unique index
	Title       string             `bson:"title" json:"title"`
	Price       float64            `bson:"price" json:"price"`
	Description string             `bson:"description" json:"description"`
	Content     string             `bson:"content" json:"content"`
	Category    string             `bson:"category" json:"category"`
	Images      Image              `bson:"images" json:"images"`
	Comments    []Comment          `bson:"comments" json:"comments"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Comment is a user remark appended to a product.
type Comment struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username string             `bson:"username" json:"username"`
	Comment  string             `bson:"comment" json:"comment"`
}
