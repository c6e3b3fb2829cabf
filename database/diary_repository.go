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

// DiaryRepository handles diary entry operations
type DiaryRepository struct {
	collection *mongo.Collection
}

// NewDiaryRepository creates a new DiaryRepository
func NewDiaryRepository(db *mongo.Database) *DiaryRepository {
	return &DiaryRepository{
		collection: db.Collection("diary_entries"),
	}
}

// Create inserts a new diary entry
func (r *DiaryRepository) Create(entry *models.DiaryEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry.ID = primitive.NewObjectID()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("creating diary entry: %w", err)
	}

	return nil
}

// FindByPlant returns a plant's diary entries, newest first
func (r *DiaryRepository) FindByPlant(plantID primitive.ObjectID) ([]models.DiaryEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"plant_id": plantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing diary entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.DiaryEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decoding diary entries: %w", err)
	}

	return entries, nil
}

// FindByID looks a diary entry up by id
func (r *DiaryRepository) FindByID(id primitive.ObjectID) (*models.DiaryEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var entry models.DiaryEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("finding diary entry: %w", err)
	}

	return &entry, nil
}

// Update applies a partial update to a diary entry
func (r *DiaryRepository) Update(id primitive.ObjectID, updateData map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updateData},
	)
	if err != nil {
		return fmt.Errorf("updating diary entry: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("diary entry not found")
	}

	return nil
}

// Delete removes a diary entry
func (r *DiaryRepository) Delete(id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting diary entry: %w", err)
	}

	return nil
}

// DeleteByPlant removes every diary entry of one plant (cascade delete)
func (r *DiaryRepository) DeleteByPlant(plantID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"plant_id": plantID})
	if err != nil {
		return fmt.Errorf("deleting diary entries: %w", err)
	}

	return nil
}
