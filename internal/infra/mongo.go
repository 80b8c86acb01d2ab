package infra

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoDatabase connects the client behind the MongoDB remote backend.
// Reachability is left to the startup probe.
func NewMongoDatabase(ctx context.Context, cfg *Config) (*mongo.Database, error) {
	if cfg == nil || cfg.MongoURI == "" {
		return nil, fmt.Errorf("mongodb uri not provided")
	}
	clientOptions := options.Client().ApplyURI(cfg.MongoURI)
	if cfg.RemoteTimeout > 0 {
		clientOptions.SetServerSelectionTimeout(cfg.RemoteTimeout).SetConnectTimeout(cfg.RemoteTimeout)
	}
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	return client.Database(cfg.MongoDatabase), nil
}
