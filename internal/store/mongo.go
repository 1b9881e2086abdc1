// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

// Package store provides the document store client lifecycle.
package store

import (
	"context"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	usersCollection    = "users"
	invoicesCollection = "invoices"
)

// Store wraps the mongo client and the database the service uses.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to the document store, verifies the connection, and ensures
// the user collection's lookup indexes. Username and email are unique keys;
// the indexes are the authority for that, not application checks.
func New(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, oops.Code("STORE_INVALID_CONFIG").Errorf("mongo URI is empty")
	}
	if database == "" {
		return nil, oops.Code("STORE_INVALID_CONFIG").Errorf("database name is empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").Wrap(err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, oops.Code("STORE_PING_FAILED").Wrap(err)
	}

	s := &Store{
		client: client,
		db:     client.Database(database),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
	}

	if _, err := s.Users().Indexes().CreateMany(ctx, indexes); err != nil {
		return oops.Code("STORE_INDEX_FAILED").
			With("collection", usersCollection).
			Wrap(err)
	}
	return nil
}

// Users returns the user collection.
func (s *Store) Users() *mongo.Collection {
	return s.db.Collection(usersCollection)
}

// Invoices returns the invoice collection.
func (s *Store) Invoices() *mongo.Collection {
	return s.db.Collection(invoicesCollection)
}

// Health verifies the connection is alive.
func (s *Store) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return oops.Code("STORE_PING_FAILED").Wrap(err)
	}
	return nil
}

// Close disconnects from the document store.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return oops.Code("STORE_CLOSE_FAILED").Wrap(err)
	}
	return nil
}
