package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/flockbook/internal/config"
)

// stateDocument is one persisted slice, keyed by its storage key.
type stateDocument struct {
	Key       string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoDBRepository stores persisted state as one document per key.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
	now      func() time.Time
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, cfg config.MongoDBConfig) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   cfg.DBName,
		collName: cfg.Collection,
		now:      time.Now,
	}, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// GetItem loads the payload stored under key.
func (r *MongoDBRepository) GetItem(ctx context.Context, key string) (string, bool, error) {
	var doc stateDocument
	err := r.collection().FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to find state %s: %w", key, err)
	}
	return doc.Payload, true, nil
}

// SetItem upserts the payload for key.
func (r *MongoDBRepository) SetItem(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{"payload": value, "updated_at": r.now().UTC()}}
	_, err := r.collection().UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert state %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes the document for key.
func (r *MongoDBRepository) RemoveItem(ctx context.Context, key string) error {
	if _, err := r.collection().DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete state %s: %w", key, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
