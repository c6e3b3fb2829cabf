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

// AdminRepository handles the admin privilege mirror collection
type AdminRepository struct {
	collection *mongo.Collection
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{
		collection: db.Collection("admins"),
	}
}

// UpsertMirror writes the mirror record for one user's privilege change.
// The document id is the user id, so promote/demote always lands on the
// same record.
func (r *AdminRepository) UpsertMirror(uid, email string, admin bool, updatedBy string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	set := bson.M{
		"admin":      admin,
		"updated_at": time.Now(),
		"updated_by": updatedBy,
	}
	if email != "" {
		set["email"] = email
	}
	set["uid"] = uid

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": set}, opts)
	if err != nil {
		return fmt.Errorf("upserting admin mirror: %w", err)
	}

	return nil
}

// FindAll returns every mirror record
func (r *AdminRepository) FindAll() ([]models.AdminRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var records []models.AdminRecord
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("listing admin mirrors: %w", err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decoding admin mirrors: %w", err)
	}

	return records, nil
}

// Delete removes a mirror record
func (r *AdminRepository) Delete(uid string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		return fmt.Errorf("deleting admin mirror: %w", err)
	}

	return nil
}
