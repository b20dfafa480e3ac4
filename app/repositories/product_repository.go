package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bazaarhq/bazaar/app/models"
	"github.com/bazaarhq/bazaar/pkg/cache"
	"github.com/bazaarhq/bazaar/pkg/query"
)

// productCacheTTL bounds staleness of the single-product read cache.
const productCacheTTL = 5 * time.Minute

// ProductUpdate carries the fields the catalog update endpoint may change.
type ProductUpdate struct {
	Title       string
	Price       float64
	Description string
	Content     string
	Category    string
	Images      models.Image
}

// ProductRepository handles database operations for the catalog.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	List(ctx context.Context, d query.Descriptor) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindByProductID(ctx context.Context, code string) (*models.Product, error)
	Update(ctx context.Context, id string, upd ProductUpdate) error
	Delete(ctx context.Context, id string) error
	SetComments(ctx context.Context, id string, comments []models.Comment) error
}

type mongoProductRepository struct {
	col   *mongo.Collection
	cache *cache.Cache
}

// NewProductRepository builds the Mongo-backed catalog repository and
// ensures the unique product_id index exists. cache may be a disabled
// no-op cache.
func NewProductRepository(ctx context.Context, db *mongo.Database, c *cache.Cache) (ProductRepository, error) {
	col := db.Collection("products")

	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "product_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("products: create product_id index: %w", err)
	}

	return &mongoProductRepository{col: col, cache: c}, nil
}

func cacheKey(id string) string { return "product:" + id }

func (r *mongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Comments == nil {
		product.Comments = []models.Comment{}
	}

	_, err := r.col.InsertOne(ctx, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("products: insert: %w", err)
	}
	return nil
}

func (r *mongoProductRepository) List(ctx context.Context, d query.Descriptor) ([]models.Product, error) {
	if err := d.Err(); err != nil {
		return nil, err
	}

	cur, err := r.col.Find(ctx, d.Filter(), d.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("products: find: %w", err)
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("products: decode: %w", err)
	}
	return products, nil
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var cached models.Product
	if r.cache.Get(ctx, cacheKey(id), &cached) {
		return &cached, nil
	}

	oid, err := parseObjectID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	product, err := r.findOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, cacheKey(id), product, productCacheTTL)
	return product, nil
}

func (r *mongoProductRepository) FindByProductID(ctx context.Context, code string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"product_id": code})
}

func (r *mongoProductRepository) Update(ctx context.Context, id string, upd ProductUpdate) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":       upd.Title,
		"price":       upd.Price,
		"description": upd.Description,
		"content":     upd.Content,
		"category":    upd.Category,
		"images":      upd.Images,
		"updated_at":  time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("products: update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	_ = r.cache.Del(ctx, cacheKey(id))
	return nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return ErrNotFound
	}

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("products: delete: %w", err)
	}

	_ = r.cache.Del(ctx, cacheKey(id))
	return nil
}

func (r *mongoProductRepository) SetComments(ctx context.Context, id string, comments []models.Comment) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"comments":   comments,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("products: set comments: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	_ = r.cache.Del(ctx, cacheKey(id))
	return nil
}

func (r *mongoProductRepository) findOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	var product models.Product
	err := r.col.FindOne(ctx, filter).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("products: find: %w", err)
	}
	return &product, nil
}
