package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DB is the MongoDB database handle shared by the repositories
var DB *mongo.Database
var Client *mongo.Client

// Connect establishes the MongoDB connection and creates indexes
func Connect(uri, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("connecting to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("pinging MongoDB: %w", err)
	}

	Client = client
	DB = client.Database(dbName)

	log.Println("✓ MongoDB connection established")

	if err = createIndexes(); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	return nil
}

// Ping checks that the MongoDB connection is alive
func Ping() error {
	if Client == nil {
		return fmt.Errorf("MongoDB client not initialized")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return Client.Ping(ctx, nil)
}

// Close shuts down the MongoDB connection
func Close() error {
	if Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return Client.Disconnect(ctx)
	}
	return nil
}

// createIndexes creates the indexes the application relies on
func createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Unique email per user
	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := DB.Collection("users").Indexes().CreateOne(ctx, emailIndex); err != nil {
		return fmt.Errorf("creating email index: %w", err)
	}

	// Plants are looked up by owner, and the duplicate-name check needs
	// owner_id + name_key
	plantIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "name_key", Value: 1}}},
	}
	if _, err := DB.Collection("plants").Indexes().CreateMany(ctx, plantIndexes); err != nil {
		return fmt.Errorf("creating plant indexes: %w", err)
	}

	// Diary entries and moisture logs are always read per plant, newest first
	entryIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "plant_id", Value: 1}, {Key: "timestamp", Value: -1}},
	}
	if _, err := DB.Collection("diary_entries").Indexes().CreateOne(ctx, entryIndex); err != nil {
		return fmt.Errorf("creating diary index: %w", err)
	}
	if _, err := DB.Collection("moisture_logs").Indexes().CreateOne(ctx, entryIndex); err != nil {
		return fmt.Errorf("creating moisture index: %w", err)
	}

	log.Println("✓ MongoDB indexes created")
	return nil
}
