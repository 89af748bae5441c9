package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/pilab-dev/fitlink/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupTestMongoDB connects to the server named by TEST_MONGO_URI and returns a
// fresh database that is dropped when the test ends. Tests are skipped when the
// variable is unset.
func SetupTestMongoDB(t *testing.T, dbNamePrefix string) *mongo.Database {
	t.Helper()

	mongoURI := os.Getenv("TEST_MONGO_URI")
	if mongoURI == "" {
		t.Skip("TEST_MONGO_URI not set, skipping MongoDB integration tests")
	}

	dbName := fmt.Sprintf("%s_%d", dbNamePrefix, time.Now().UnixNano())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, mongodb.ClientOptions(mongoURI))
	if err != nil {
		t.Fatalf("Failed to create MongoDB client: %v", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Fatalf("Failed to connect to MongoDB (ping failed): %v", err)
	}

	db := client.Database(dbName)

	t.Cleanup(func() {
		dropCtx, cancelDrop := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelDrop()
		if err := db.Drop(dropCtx); err != nil {
			t.Logf("Warning: Failed to drop database %s: %v", dbName, err)
		}
		if err := client.Disconnect(dropCtx); err != nil {
			t.Logf("Warning: Failed to disconnect MongoDB client: %v", err)
		}
	})

	return db
}
