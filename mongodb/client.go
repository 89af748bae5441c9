package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

// Client owns the MongoDB connection and the application database handle.
// It is created once at startup and passed to the repositories.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// ClientOptions returns the driver options shared by the application and the
// integration tests: traced commands and map-shaped nested documents.
func ClientOptions(uri string) *options.ClientOptions {
	return options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second).
		SetMonitor(otelmongo.NewMonitor()).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
}

// Connect dials MongoDB and verifies the primary is reachable.
func Connect(ctx context.Context, uri, dbName string) (*Client, error) {
	log.Info().Str("db", dbName).Msg("Connecting to MongoDB")

	client, err := mongo.Connect(ctx, ClientOptions(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB primary: %w", err)
	}

	log.Info().Msg("MongoDB client initialized successfully")

	return &Client{client: client, db: client.Database(dbName)}, nil
}

// Database returns the application database.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Ping checks the primary with a short timeout. Used by health checks.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return c.client.Ping(pingCtx, readpref.Primary())
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	log.Info().Msg("Closing MongoDB connection")

	return c.client.Disconnect(ctx)
}
