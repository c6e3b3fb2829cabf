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

// UserRepository handles user document operations
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// Create inserts a new user
func (r *UserRepository) Create(user *models.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user.ID = primitive.NewObjectID()
	user.JoinDate = time.Now()

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("this email is already registered")
		}
		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

// FindByEmail looks a user up by email
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}

	return &user, nil
}

// FindByID looks a user up by ObjectID
func (r *UserRepository) FindByID(id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}

	return &user, nil
}

// FindByHexID looks a user up by its hex id, the form plant documents store
// in owner_id. An unparseable id behaves like a missing document.
func (r *UserRepository) FindByHexID(id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.FindByID(oid)
}

// FindAll returns every user
func (r *UserRepository) FindAll() ([]models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var users []models.User
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}

	return users, nil
}

// FindAdmins returns every admin user
func (r *UserRepository) FindAdmins() ([]models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var admins []models.User
	cursor, err := r.collection.Find(ctx, bson.M{"admin": 1})
	if err != nil {
		return nil, fmt.Errorf("listing admins: %w", err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &admins); err != nil {
		return nil, fmt.Errorf("decoding admins: %w", err)
	}

	return admins, nil
}

// EmailExists reports whether an email is already taken
func (r *UserRepository) EmailExists(email string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}

	return count > 0, nil
}

// UpdateByID applies a partial update to a user document
func (r *UserRepository) UpdateByID(id primitive.ObjectID, updateData map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updateData},
	)

	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// UpdateByEmail applies a partial update to a user looked up by email
func (r *UserRepository) UpdateByEmail(email string, updateData map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"email": email},
		bson.M{"$set": updateData},
	)

	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// AddToken registers a device token on the user document. $addToSet keeps
// the list free of duplicates when a device re-registers.
func (r *UserRepository) AddToken(userID primitive.ObjectID, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"tokens": token}},
	)
	if err != nil {
		return fmt.Errorf("adding token: %w", err)
	}

	return nil
}

// RemoveToken removes one device token from a user identified by hex id.
// Used both for explicit unregistration and for pruning tokens the push
// provider reports as dead. Removing an absent token is a no-op.
func (r *UserRepository) RemoveToken(userID string, token string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = r.collection.UpdateOne(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$pull": bson.M{"tokens": token}},
	)
	if err != nil {
		return fmt.Errorf("removing token: %w", err)
	}

	return nil
}

// ClearLegacyToken removes the legacy single-token field from a user
func (r *UserRepository) ClearLegacyToken(userID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$unset": bson.M{"fcm_token": ""}},
	)
	if err != nil {
		return fmt.Errorf("clearing legacy token: %w", err)
	}

	return nil
}

// UpdateLastSeen stamps a user's last activity
func (r *UserRepository) UpdateLastSeen(userID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"last_seen": now}},
	)

	if err != nil {
		return fmt.Errorf("updating last_seen: %w", err)
	}

	return nil
}

// Delete removes a user document
func (r *UserRepository) Delete(id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	return nil
}

// Count returns the number of users
func (r *UserRepository) Count() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}
