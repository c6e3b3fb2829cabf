package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ymmiz/berrifyApp/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PlantRepository handles plant document operations
type PlantRepository struct {
	collection *mongo.Collection
}

// NewPlantRepository creates a new PlantRepository
func NewPlantRepository(db *mongo.Database) *PlantRepository {
	return &PlantRepository{
		collection: db.Collection("plants"),
	}
}

// Create inserts a new plant
func (r *PlantRepository) Create(plant *models.Plant) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	plant.ID = primitive.NewObjectID()
	plant.CreatedAt = time.Now()
	plant.NameKey = models.MakeNameKey(plant.Name)

	_, err := r.collection.InsertOne(ctx, plant)
	if err != nil {
		return fmt.Errorf("creating plant: %w", err)
	}

	return nil
}

// FindAll returns every plant record. The reminder job deliberately reads
// the whole collection, soft-deleted plants included, and filters in memory.
func (r *PlantRepository) FindAll() ([]models.Plant, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var plants []models.Plant
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("listing plants: %w", err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plants); err != nil {
		return nil, fmt.Errorf("decoding plants: %w", err)
	}

	return plants, nil
}

// FindByOwner returns the active plants of one owner
func (r *PlantRepository) FindByOwner(ownerID string) ([]models.Plant, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var plants []models.Plant
	filter := bson.M{"owner_id": ownerID, "active": true}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing plants: %w", err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plants); err != nil {
		return nil, fmt.Errorf("decoding plants: %w", err)
	}

	return plants, nil
}

// FindByID looks a plant up by id
func (r *PlantRepository) FindByID(id primitive.ObjectID) (*models.Plant, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var plant models.Plant
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plant)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("finding plant: %w", err)
	}

	return &plant, nil
}

// NameExists reports whether an owner already has a plant with this
// normalized name. excludeID skips the plant being renamed.
func (r *PlantRepository) NameExists(ownerID, nameKey string, excludeID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{
		"owner_id": ownerID,
		"name_key": nameKey,
	}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("checking plant name: %w", err)
	}

	return count > 0, nil
}

// Update applies a partial update to a plant document
func (r *PlantRepository) Update(id primitive.ObjectID, updateData map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updateData},
	)

	if err != nil {
		return fmt.Errorf("updating plant: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("plant not found")
	}

	return nil
}

// MarkWatered stamps a plant's last watering time
func (r *PlantRepository) MarkWatered(id primitive.ObjectID, at time.Time) error {
	return r.Update(id, map[string]interface{}{
		"last_watered_at": at,
	})
}

// SoftDelete marks a plant inactive without removing its history
func (r *PlantRepository) SoftDelete(id primitive.ObjectID) error {
	now := time.Now()
	return r.Update(id, map[string]interface{}{
		"active":     false,
		"deleted_at": now,
	})
}

// Delete removes the plant document itself. Cascading of diary entries,
// moisture logs and scan jobs is the caller's job (see PlantHandler).
func (r *PlantRepository) Delete(id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting plant: %w", err)
	}

	return nil
}

// DeleteByOwner removes every plant of one owner
func (r *PlantRepository) DeleteByOwner(ownerID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("deleting plants: %w", err)
	}

	return nil
}

// Count returns the number of plants
func (r *PlantRepository) Count() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("counting plants: %w", err)
	}
	return count, nil
}
