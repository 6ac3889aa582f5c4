package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quote-archive/pkg/domain"
)

// MongoClient mirrors the quote collection into MongoDB. The quote text is
// the natural key: collection runs re-save everything, and upserts keep the
// mirror free of duplicates.
type MongoClient struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoClient creates a Mongo-backed quote mirror. Connection errors
// surface on Connect, not here.
func NewMongoClient(uri, database, collection string) *MongoClient {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return &MongoClient{}
	}
	return &MongoClient{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

// Connect verifies the connection with a ping.
func (c *MongoClient) Connect(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return c.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (c *MongoClient) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}

// SaveQuote upserts one quote, keyed by its text.
func (c *MongoClient) SaveQuote(ctx context.Context, q domain.Quote) error {
	if c.collection == nil {
		return fmt.Errorf("collection not initialized")
	}

	filter := bson.M{"quote": q.Text}
	update := bson.M{"$set": q}
	opts := options.Update().SetUpsert(true)

	_, err := c.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// SaveAll upserts every quote, stopping at the first error.
func (c *MongoClient) SaveAll(ctx context.Context, quotes []domain.Quote) error {
	for _, q := range quotes {
		if err := c.SaveQuote(ctx, q); err != nil {
			return fmt.Errorf("save quote %q: %w", q.Text, err)
		}
	}
	return nil
}

// AllQuotes reads the full mirrored collection back.
func (c *MongoClient) AllQuotes(ctx context.Context) ([]domain.Quote, error) {
	if c.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	cursor, err := c.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer cursor.Close(ctx)

	var quotes []domain.Quote
	for cursor.Next(ctx) {
		var q domain.Quote
		if err := cursor.Decode(&q); err != nil {
			continue // Skip invalid documents
		}
		quotes = append(quotes, q)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return quotes, nil
}
