package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ymmiz/berrifyApp/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MoistureRepository handles moisture log operations
type MoistureRepository struct {
	collection *mongo.Collection
}

// NewMoistureRepository creates a new MoistureRepository
func NewMoistureRepository(db *mongo.Database) *MoistureRepository {
	return &MoistureRepository{
		collection: db.Collection("moisture_logs"),
	}
}

// Create inserts a moisture reading
func (r *MoistureRepository) Create(log *models.MoistureLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return fmt.Errorf("creating moisture log: %w", err)
	}

	return nil
}

// FindByPlant returns the most recent readings of a plant, newest first
func (r *MoistureRepository) FindByPlant(plantID string, limit int64) ([]models.MoistureLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"plant_id": plantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing moisture logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []models.MoistureLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("decoding moisture logs: %w", err)
	}

	return logs, nil
}

// Latest returns the newest reading of a plant, or nil when none exist
func (r *MoistureRepository) Latest(plantID string) (*models.MoistureLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var log models.MoistureLog
	err := r.collection.FindOne(ctx, bson.M{"plant_id": plantID}, opts).Decode(&log)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("finding latest moisture log: %w", err)
	}

	return &log, nil
}

// DeleteByPlant removes every reading of one plant (cascade delete)
func (r *MoistureRepository) DeleteByPlant(plantID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"plant_id": plantID})
	if err != nil {
		return fmt.Errorf("deleting moisture logs: %w", err)
	}

	return nil
}
