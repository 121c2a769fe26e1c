package repomanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/prajeshElEvEn/microauth/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const defaultMongoDatabase = "microauth"

// MongoRepositoryManager serves the directory from a MongoDB database.
type MongoRepositoryManager struct {
	client *mongo.Client
	repo   *users.MongoRepository
}

// OpenMongo creates a client for uri. The driver connects lazily; Ping
// reports reachability.
func OpenMongo(ctx context.Context, uri string) (*MongoRepositoryManager, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	db := client.Database(mongoDatabaseName(uri))
	return &MongoRepositoryManager{client: client, repo: users.NewMongoRepository(db)}, nil
}

// mongoDatabaseName returns the database named in the URI path, or the
// default when the path is empty.
func mongoDatabaseName(uri string) string {
	_, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return defaultMongoDatabase
	}
	rest, _, _ = strings.Cut(rest, "?")
	_, path, ok := strings.Cut(rest, "/")
	if !ok || path == "" {
		return defaultMongoDatabase
	}
	return path
}

func (m *MongoRepositoryManager) Users() users.Repository {
	return m.repo
}

// WithTx runs fn directly. Every repository write touches one document and
// is atomic on its own; multi-document transactions need a replica set.
func (m *MongoRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error {
	return fn(ctx, m.repo)
}

// RunMigrations creates the collection indexes.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	return m.repo.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
