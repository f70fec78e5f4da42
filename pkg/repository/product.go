package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// casAttempts bounds the optimistic-concurrency retry loop on stock writes.
const casAttempts = 5

type ProductRepository struct {
	collection *mongo.Collection
	cache      *RedisRepository
	logger     *zap.Logger
}

// NewProductRepository wires the products collection. cache may be nil, in
// which case reads always hit the database.
func NewProductRepository(m *MongoRepository, cache *RedisRepository, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{
		collection: m.database.Collection(productCollection),
		cache:      cache,
		logger:     logger,
	}
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	if r.cache != nil {
		if products, err := r.cache.GetProductList(ctx); err == nil {
			return products, nil
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		products = append(products, productFromDoc(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.SetProductList(ctx, products); err != nil {
			r.logger.Warn("failed to cache product list", zap.Error(err))
		}
	}
	return products, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	doc, err := r.findDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	product := productFromDoc(doc)
	return &product, nil
}

func (r *ProductRepository) Insert(ctx context.Context, p *models.NewProduct) (*models.Product, error) {
	now := time.Now()
	qty := p.Qty
	if qty == "" {
		qty = "0"
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}

	doc := bson.M{
		"type":        p.Category,
		"price":       p.Price,
		"description": p.Description,
		"size":        p.Size,
		"qty":         qty,
		"images":      images,
		"createdAt":   now,
		"updatedAt":   now,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)

	oid := result.InsertedID.(primitive.ObjectID)
	return &models.Product{
		ID:            oid.Hex(),
		Category:      p.Category,
		Price:         p.Price,
		Description:   p.Description,
		Size:          p.Size,
		Stock:         parseCount(qty),
		Images:        images,
		CreatedAt:     now,
		UpdatedAt:     now,
		StockField:    "qty",
		StockAsString: true,
	}, nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	oid, err := objectID(id, checkout.ErrProductNotFound)
	if err != nil {
		return err
	}

	update := bson.M{}
	for k, v := range fields {
		if k == "id" || k == "_id" {
			continue
		}
		update[k] = v
	}
	update["updatedAt"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return checkout.ErrProductNotFound
	}
	r.invalidate(ctx)
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, checkout.ErrProductNotFound)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return checkout.ErrProductNotFound
	}
	r.invalidate(ctx)
	return nil
}

// DecrementStock conditionally takes qty units off a product's stock. The
// write matches on the exact stock value that was read, so two checkouts
// racing over the same units cannot both win; the loser re-reads and
// retries. A decrement that empties the stock removes the product document
// and keeps a snapshot in the returned change for compensation.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) (*models.StockChange, error) {
	oid, err := objectID(id, checkout.ErrProductNotFound)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		var doc bson.M
		if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, checkout.ErrProductNotFound
			}
			return nil, err
		}

		sv := readStock(doc)
		if sv.Count < qty {
			return nil, &checkout.InsufficientStockError{
				ProductID: id,
				Available: sv.Count,
				Requested: qty,
			}
		}

		newStock := sv.Count - qty
		filter := bson.M{"_id": oid, sv.Field: sv.Raw}

		if newStock <= 0 {
			result, err := r.collection.DeleteOne(ctx, filter)
			if err != nil {
				return nil, err
			}
			if result.DeletedCount == 1 {
				r.invalidate(ctx)
				r.logger.Info("product sold out and removed", zap.String("product_id", id))
				return &models.StockChange{
					ProductID: id,
					Previous:  sv.Count,
					NewStock:  0,
					Deleted:   true,
					Snapshot:  doc,
				}, nil
			}
			continue
		}

		update := bson.M{"$set": bson.M{
			sv.Field:    sv.encode(newStock),
			"updatedAt": time.Now(),
		}}
		result, err := r.collection.UpdateOne(ctx, filter, update)
		if err != nil {
			return nil, err
		}
		if result.MatchedCount == 1 {
			r.invalidate(ctx)
			return &models.StockChange{
				ProductID: id,
				Previous:  sv.Count,
				NewStock:  newStock,
			}, nil
		}
		// Lost the race to a concurrent writer; read again.
	}

	return nil, fmt.Errorf("stock update for product %s lost %d consecutive races", id, casAttempts)
}

// RestoreStock undoes a change applied by DecrementStock: re-inserts the
// snapshot when the decrement deleted the product, otherwise adds the
// quantity back under the same compare-and-swap discipline.
func (r *ProductRepository) RestoreStock(ctx context.Context, change *models.StockChange) error {
	if change.Deleted {
		if _, err := r.collection.InsertOne(ctx, change.Snapshot); err != nil {
			return fmt.Errorf("failed to re-insert product %s: %w", change.ProductID, err)
		}
		r.invalidate(ctx)
		return nil
	}

	oid, err := objectID(change.ProductID, checkout.ErrProductNotFound)
	if err != nil {
		return err
	}
	restore := change.Previous - change.NewStock

	for attempt := 0; attempt < casAttempts; attempt++ {
		var doc bson.M
		if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
			if err == mongo.ErrNoDocuments {
				return fmt.Errorf("restore of %d units: %w", restore, checkout.ErrProductNotFound)
			}
			return err
		}

		sv := readStock(doc)
		filter := bson.M{"_id": oid, sv.Field: sv.Raw}
		update := bson.M{"$set": bson.M{
			sv.Field:    sv.encode(sv.Count + restore),
			"updatedAt": time.Now(),
		}}
		result, err := r.collection.UpdateOne(ctx, filter, update)
		if err != nil {
			return err
		}
		if result.MatchedCount == 1 {
			r.invalidate(ctx)
			return nil
		}
	}

	return fmt.Errorf("stock restore for product %s lost %d consecutive races", change.ProductID, casAttempts)
}

func (r *ProductRepository) findDoc(ctx context.Context, id string) (bson.M, error) {
	oid, err := objectID(id, checkout.ErrProductNotFound)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, checkout.ErrProductNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (r *ProductRepository) invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.InvalidateProductList(ctx); err != nil {
		r.logger.Warn("failed to invalidate product list cache", zap.Error(err))
	}
}

// objectID parses a hex id, mapping syntactically invalid ids onto the same
// not-found error an absent document produces.
func objectID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid id %q", notFound, id)
	}
	return oid, nil
}

func productFromDoc(doc bson.M) models.Product {
	p := models.Product{
		Category:    stringField(doc, "type"),
		Price:       stringField(doc, "price"),
		Description: stringField(doc, "description"),
		Size:        stringField(doc, "size"),
		CreatedAt:   timeField(doc, "createdAt"),
		UpdatedAt:   timeField(doc, "updatedAt"),
		Images:      []string{},
	}
	if oid, ok := doc["_id"].(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}

	sv := readStock(doc)
	p.Stock = sv.Count
	p.StockField = sv.Field
	p.StockAsString = sv.AsString

	if raw, ok := doc["images"].(primitive.A); ok {
		for _, img := range raw {
			if s, ok := img.(string); ok {
				p.Images = append(p.Images, s)
			}
		}
	}
	return p
}

func stringField(doc bson.M, key string) string {
	switch v := doc[key].(type) {
	case string:
		return v
	case int32:
		return strconv.Itoa(int(v))
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func timeField(doc bson.M, key string) time.Time {
	switch v := doc[key].(type) {
	case primitive.DateTime:
		return v.Time()
	case time.Time:
		return v
	default:
		return time.Time{}
	}
}
