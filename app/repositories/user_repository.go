package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bazaarhq/bazaar/app/models"
)

// UserRepository handles database operations for users and their embedded
// cart/order state.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	RoleOf(ctx context.Context, id string) (int, error)

	// SetCart replaces the whole cart (replace-whole-cart semantics).
	SetCart(ctx context.Context, id string, cart []models.CartItem) error
	SetCartByEmail(ctx context.Context, email string, cart []models.CartItem) error

	PushOrder(ctx context.Context, email string, order models.Order) error
	SetOrders(ctx context.Context, email string, orders []models.Order) error
}

type mongoUserRepository struct {
	col *mongo.Collection
}

// NewUserRepository builds the Mongo-backed user repository and ensures
// the unique email index exists.
func NewUserRepository(ctx context.Context, db *mongo.Database) (UserRepository, error) {
	col := db.Collection("users")

	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("users: create email index: %w", err)
	}

	return &mongoUserRepository{col: col}, nil
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Cart == nil {
		user.Cart = []models.CartItem{}
	}
	if user.Orders == nil {
		user.Orders = []models.Order{}
	}

	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("users: insert: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) RoleOf(ctx context.Context, id string) (int, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return user.Role, nil
}

func (r *mongoUserRepository) SetCart(ctx context.Context, id string, cart []models.CartItem) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return ErrNotFound
	}
	return r.updateOne(ctx, bson.M{"_id": oid}, bson.M{"cart": cart})
}

func (r *mongoUserRepository) SetCartByEmail(ctx context.Context, email string, cart []models.CartItem) error {
	return r.updateOne(ctx, bson.M{"email": email}, bson.M{"cart": cart})
}

func (r *mongoUserRepository) PushOrder(ctx context.Context, email string, order models.Order) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{
			"$push": bson.M{"orders": order},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("users: push order: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) SetOrders(ctx context.Context, email string, orders []models.Order) error {
	return r.updateOne(ctx, bson.M{"email": email}, bson.M{"orders": orders})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: find: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) updateOne(ctx context.Context, filter, set bson.M) error {
	set["updated_at"] = time.Now()
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("users: update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
