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

// ScanJobRepository handles photo scan job operations
type ScanJobRepository struct {
	collection *mongo.Collection
}

// NewScanJobRepository creates a new ScanJobRepository
func NewScanJobRepository(db *mongo.Database) *ScanJobRepository {
	return &ScanJobRepository{
		collection: db.Collection("scan_jobs"),
	}
}

// Create queues a new scan job
func (r *ScanJobRepository) Create(job *models.ScanJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	job.ID = primitive.NewObjectID()
	job.Status = models.ScanStatusQueued
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt

	_, err := r.collection.InsertOne(ctx, job)
	if err != nil {
		return fmt.Errorf("creating scan job: %w", err)
	}

	return nil
}

// FindByID looks a scan job up by id
func (r *ScanJobRepository) FindByID(id primitive.ObjectID) (*models.ScanJob, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var job models.ScanJob
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&job)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("finding scan job: %w", err)
	}

	return &job, nil
}

// NextQueued returns the oldest queued job for a device, or nil when the
// device has nothing to do. Devices poll this.
func (r *ScanJobRepository) NextQueued(deviceID string) (*models.ScanJob, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{
		"device_id": deviceID,
		"status":    models.ScanStatusQueued,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})

	var job models.ScanJob
	err := r.collection.FindOne(ctx, filter, opts).Decode(&job)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("finding queued scan job: %w", err)
	}

	return &job, nil
}

// MarkUploaded completes a scan job with its image location
func (r *ScanJobRepository) MarkUploaded(id primitive.ObjectID, imageURL, storagePath string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"status":       models.ScanStatusUploaded,
			"image_url":    imageURL,
			"storage_path": storagePath,
			"updated_at":   time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("completing scan job: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("scan job not found")
	}

	return nil
}

// MarkFailed records a device-side failure on a scan job
func (r *ScanJobRepository) MarkFailed(id primitive.ObjectID, reason string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"status":     models.ScanStatusFailed,
			"error":      reason,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failing scan job: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("scan job not found")
	}

	return nil
}

// DeleteByPlant removes the scan jobs of one plant (cascade delete)
func (r *ScanJobRepository) DeleteByPlant(plantID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"plant_id": plantID})
	if err != nil {
		return fmt.Errorf("deleting scan jobs: %w", err)
	}

	return nil
}
