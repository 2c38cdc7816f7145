package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoDatabase   = "mealyetf"
	defaultMongoCollection = "artifacts"
)

// MongoCache stores entries as documents in a MongoDB collection. Expired
// documents are filtered out on read and removed by a TTL index.
type MongoCache struct {
	client     *mongo.Client
	collection *mongo.Collection
	ownsClient bool
}

type mongoEntry struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// MongoOption configures a MongoCache.
type MongoOption func(*mongoConfig)

type mongoConfig struct {
	database   string
	collection string
}

// WithMongoCollection selects the database and collection holding entries.
func WithMongoCollection(database, collection string) MongoOption {
	return func(c *mongoConfig) {
		c.database = database
		c.collection = collection
	}
}

// NewMongoCache connects to the server at uri and ensures the TTL index.
func NewMongoCache(ctx context.Context, uri string, opts ...MongoOption) (*MongoCache, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	c, err := NewMongoCacheFromClient(ctx, client, opts...)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	c.ownsClient = true
	return c, nil
}

// NewMongoCacheFromClient uses an existing client. Close does not disconnect
// it.
func NewMongoCacheFromClient(ctx context.Context, client *mongo.Client, opts ...MongoOption) (*MongoCache, error) {
	cfg := mongoConfig{database: defaultMongoDatabase, collection: defaultMongoCollection}
	for _, opt := range opts {
		opt(&cfg)
	}

	coll := client.Database(cfg.database).Collection(cfg.collection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, fmt.Errorf("mongo create ttl index: %w", err)
	}
	return &MongoCache{client: client, collection: coll}, nil
}

// Get retrieves an unexpired entry.
func (c *MongoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	filter := bson.M{
		"_id": key,
		"$or": bson.A{
			bson.M{"expires_at": bson.M{"$exists": false}},
			bson.M{"expires_at": bson.M{"$gt": time.Now()}},
		},
	}
	var e mongoEntry
	err := c.collection.FindOne(ctx, filter).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("mongo find: %w", err)
	}
	return e.Data, true, nil
}

// Set upserts an entry.
func (c *MongoCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := mongoEntry{Key: key, Data: data}
	if ttl > 0 {
		at := time.Now().Add(ttl)
		e.ExpiresAt = &at
	}
	_, err := c.collection.ReplaceOne(ctx, bson.M{"_id": key}, e, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo replace: %w", err)
	}
	return nil
}

// Delete removes an entry.
func (c *MongoCache) Delete(ctx context.Context, key string) error {
	if _, err := c.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

// Clear removes every entry in the collection.
func (c *MongoCache) Clear(ctx context.Context) error {
	if _, err := c.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

// Close disconnects the client if NewMongoCache created it.
func (c *MongoCache) Close() error {
	if !c.ownsClient {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

var _ Cache = (*MongoCache)(nil)
