package repository

import (
	"context"
	"time"

	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type OrderRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewOrderRepository(m *MongoRepository, logger *zap.Logger) *OrderRepository {
	return &OrderRepository{
		collection: m.database.Collection(orderCollection),
		logger:     logger,
	}
}

func (r *OrderRepository) Insert(ctx context.Context, order *models.Order) (string, error) {
	result, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return "", err
	}
	oid := result.InsertedID.(primitive.ObjectID)
	order.ID = oid.Hex()
	return order.ID, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	for cursor.Next(ctx) {
		var doc struct {
			ID           primitive.ObjectID `bson:"_id"`
			models.Order `bson:",inline"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		doc.Order.ID = doc.ID.Hex()
		orders = append(orders, doc.Order)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	oid, err := objectID(id, checkout.ErrOrderNotFound)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return checkout.ErrOrderNotFound
	}
	r.logger.Info("order status updated",
		zap.String("order_id", id),
		zap.String("status", string(status)))
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, checkout.ErrOrderNotFound)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return checkout.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) CountByNumber(ctx context.Context, number string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"orderNumber": number})
}
