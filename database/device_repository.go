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

// DeviceRepository handles hardware device link operations
type DeviceRepository struct {
	collection *mongo.Collection
}

// NewDeviceRepository creates a new DeviceRepository
func NewDeviceRepository(db *mongo.Database) *DeviceRepository {
	return &DeviceRepository{
		collection: db.Collection("devices"),
	}
}

// Link upserts a device-to-plant association. Linking an already-known
// device re-points it at the new plant.
func (r *DeviceRepository) Link(deviceID, plantID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"plant_id":  plantID,
			"linked_at": time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": deviceID}, update, opts)
	if err != nil {
		return fmt.Errorf("linking device: %w", err)
	}

	return nil
}

// FindByID looks a device up by its hardware id
func (r *DeviceRepository) FindByID(deviceID string) (*models.Device, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var device models.Device
	err := r.collection.FindOne(ctx, bson.M{"_id": deviceID}).Decode(&device)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("finding device: %w", err)
	}

	return &device, nil
}

// FindByPlant returns the device linked to a plant, if any
func (r *DeviceRepository) FindByPlant(plantID string) (*models.Device, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var device models.Device
	err := r.collection.FindOne(ctx, bson.M{"plant_id": plantID}).Decode(&device)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("finding device: %w", err)
	}

	return &device, nil
}

// Unlink removes a device association
func (r *DeviceRepository) Unlink(deviceID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": deviceID})
	if err != nil {
		return fmt.Errorf("unlinking device: %w", err)
	}

	return nil
}

// UnlinkByPlant removes any device association of one plant (cascade delete)
func (r *DeviceRepository) UnlinkByPlant(plantID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"plant_id": plantID})
	if err != nil {
		return fmt.Errorf("unlinking devices: %w", err)
	}

	return nil
}
