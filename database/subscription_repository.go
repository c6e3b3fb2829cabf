package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ymmiz/berrifyApp/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SubscriptionRepository handles legacy web-push subscription operations
type SubscriptionRepository struct {
	collection *mongo.Collection
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{
		collection: db.Collection("push_subscriptions"),
	}
}

// Upsert stores a subscription, keyed by its endpoint so a browser
// re-subscribing replaces its previous record
func (r *SubscriptionRepository) Upsert(sub *models.PushSubscription) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	if sub.Created.IsZero() {
		sub.Created = time.Now()
	}

	update := bson.M{
		"$set": bson.M{
			"user_id": sub.UserID,
			"keys":    sub.Keys,
		},
		"$setOnInsert": bson.M{
			"_id":        sub.ID,
			"created_at": sub.Created,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"endpoint": sub.Endpoint}, update, opts)
	if err != nil {
		return fmt.Errorf("saving push subscription: %w", err)
	}

	return nil
}

// FindByUser returns every subscription of one user
func (r *SubscriptionRepository) FindByUser(userID string) ([]models.PushSubscription, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("listing push subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []models.PushSubscription
	if err = cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decoding push subscriptions: %w", err)
	}

	return subs, nil
}

// DeleteByEndpoint removes a subscription whose push service rejected it
func (r *SubscriptionRepository) DeleteByEndpoint(endpoint string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"endpoint": endpoint})
	if err != nil {
		return fmt.Errorf("deleting push subscription: %w", err)
	}

	return nil
}

// DeleteByUser removes every subscription of one user
func (r *SubscriptionRepository) DeleteByUser(userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("deleting push subscriptions: %w", err)
	}

	return nil
}
