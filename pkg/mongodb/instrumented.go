package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/morevans/booking-service/pkg/logging"
	"github.com/morevans/booking-service/pkg/metrics"
)

// InstrumentedClient wraps a MongoDB Client with metrics and query logging
type InstrumentedClient struct {
	client  *Client
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewInstrumentedClient creates a new instrumented MongoDB client
func NewInstrumentedClient(client *Client, m *metrics.Metrics, logger *logging.Logger) *InstrumentedClient {
	return &InstrumentedClient{
		client:  client,
		metrics: m,
		logger:  logger,
	}
}

// Collection returns an instrumented collection
func (c *InstrumentedClient) Collection(name string) *InstrumentedCollection {
	return &InstrumentedCollection{
		collection: c.client.Collection(name),
		name:       name,
		metrics:    c.metrics,
		logger:     c.logger,
	}
}

// Database returns the underlying database handle
func (c *InstrumentedClient) Database() *mongo.Database {
	return c.client.Database()
}

// Close disconnects the client
func (c *InstrumentedClient) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// HealthCheck performs a health check on the MongoDB connection
func (c *InstrumentedClient) HealthCheck(ctx context.Context) error {
	return c.client.HealthCheck(ctx)
}

// RawClient returns the underlying Client for advanced operations
func (c *InstrumentedClient) RawClient() *Client {
	return c.client
}

// InstrumentedCollection wraps a MongoDB Collection with metrics and query logging
type InstrumentedCollection struct {
	collection *mongo.Collection
	name       string
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

func (c *InstrumentedCollection) record(ctx context.Context, operation string, err error, duration time.Duration, rowsAffected int64) {
	if c.metrics != nil {
		c.metrics.RecordMongoDBOperation(c.name, operation, err, duration)
	}
	if c.logger != nil {
		c.logger.DatabaseQuery(ctx, c.name, operation, duration, err == nil, rowsAffected)
	}
}

// InsertOne inserts a single document with instrumentation
func (c *InstrumentedCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	start := time.Now()
	result, err := c.collection.InsertOne(ctx, document, opts...)

	var rowsAffected int64
	if err == nil {
		rowsAffected = 1
	}
	c.record(ctx, "insertOne", err, time.Since(start), rowsAffected)

	return result, err
}

// FindOne finds a single document with instrumentation
func (c *InstrumentedCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	start := time.Now()
	result := c.collection.FindOne(ctx, filter, opts...)

	err := result.Err()
	if err == mongo.ErrNoDocuments {
		err = nil
	}
	var rowsAffected int64
	if result.Err() == nil {
		rowsAffected = 1
	}
	c.record(ctx, "findOne", err, time.Since(start), rowsAffected)

	return result
}

// Find finds multiple documents with instrumentation
func (c *InstrumentedCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	start := time.Now()
	cursor, err := c.collection.Find(ctx, filter, opts...)

	// Count not available until cursor iteration
	c.record(ctx, "find", err, time.Since(start), 0)

	return cursor, err
}

// UpdateOne updates a single document with instrumentation
func (c *InstrumentedCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	start := time.Now()
	result, err := c.collection.UpdateOne(ctx, filter, update, opts...)

	var rowsAffected int64
	if err == nil && result != nil {
		rowsAffected = result.ModifiedCount
	}
	c.record(ctx, "updateOne", err, time.Since(start), rowsAffected)

	return result, err
}

// ReplaceOne replaces a single document with instrumentation
func (c *InstrumentedCollection) ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	start := time.Now()
	result, err := c.collection.ReplaceOne(ctx, filter, replacement, opts...)

	var rowsAffected int64
	if err == nil && result != nil {
		rowsAffected = result.ModifiedCount + result.UpsertedCount
	}
	c.record(ctx, "replaceOne", err, time.Since(start), rowsAffected)

	return result, err
}

// DeleteOne deletes a single document with instrumentation
func (c *InstrumentedCollection) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	start := time.Now()
	result, err := c.collection.DeleteOne(ctx, filter, opts...)

	var rowsAffected int64
	if err == nil && result != nil {
		rowsAffected = result.DeletedCount
	}
	c.record(ctx, "deleteOne", err, time.Since(start), rowsAffected)

	return result, err
}

// CountDocuments counts documents with instrumentation
func (c *InstrumentedCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	start := time.Now()
	count, err := c.collection.CountDocuments(ctx, filter, opts...)

	c.record(ctx, "countDocuments", err, time.Since(start), count)

	return count, err
}

// CreateIndex creates an index with instrumentation
func (c *InstrumentedCollection) CreateIndex(ctx context.Context, model mongo.IndexModel, opts ...*options.CreateIndexesOptions) (string, error) {
	start := time.Now()
	name, err := c.collection.Indexes().CreateOne(ctx, model, opts...)

	c.record(ctx, "createIndex", err, time.Since(start), 0)

	return name, err
}

// Underlying returns the underlying mongo.Collection
func (c *InstrumentedCollection) Underlying() *mongo.Collection {
	return c.collection
}

// Name returns the collection name
func (c *InstrumentedCollection) Name() string {
	return c.name
}
