package tests

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/mansoorceksport/liftlog/internal/config"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupTestDB spins up a fresh single-node replica set (record rebuilds use
// transactions) and returns the database connection along with a cleanup function.
func SetupTestDB(t *testing.T) (*mongo.Database, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}
	ctx := context.Background()

	mongodbContainer, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	endpoint, err := mongodbContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint).SetDirect(true))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	return mongoClient.Database("test_db"), func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("failed to disconnect mongo: %v", err)
		}
		if err := mongodbContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
}

// TestConfig returns the minimal configuration NewApp needs
func TestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.BodyLimitKB = 256
	cfg.Progression = config.ProgressionConfig{
		CacheTTL:       time.Minute,
		DefaultWeeks:   12,
		Timezone:       "UTC",
		RecordRetries:  3,
		IdempotencyTTL: time.Hour,
	}
	return cfg
}
