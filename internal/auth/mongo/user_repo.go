// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

// Package mongo implements the auth repositories on the document store.
package mongo

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/billfold/billfold/internal/auth"
)

// UserRepository implements auth.UserRepository using a mongo collection.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a UserRepository on the given collection.
func NewUserRepository(coll *mongo.Collection) *UserRepository {
	return &UserRepository{coll: coll}
}

// findByKey retrieves the single user whose key field equals value.
func (r *UserRepository) findByKey(ctx context.Context, key, value string) (*auth.User, error) {
	var user auth.User
	err := r.coll.FindOne(ctx, bson.M{key: value}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, oops.Code("USER_NOT_FOUND").
			With(key, value).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_FIND_FAILED").
			With("operation", "find user by "+key).
			Wrap(err)
	}
	return &user, nil
}

// FindByUsername retrieves a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.findByKey(ctx, "username", username)
}

// FindByEmail retrieves a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findByKey(ctx, "email", email)
}

// GetByID retrieves a user by its hex object ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*auth.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, oops.Code("USER_INVALID_ID").With("id", id).Wrap(err)
	}

	var user auth.User
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by id").
			With("id", id).
			Wrap(err)
	}
	return &user, nil
}

// Insert stores a new user and returns its hex object ID.
func (r *UserRepository) Insert(ctx context.Context, user *auth.User) (string, error) {
	result, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return "", oops.Code("USER_INSERT_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", oops.Code("USER_INSERT_FAILED").
			Errorf("unexpected inserted ID type %T", result.InsertedID)
	}
	return oid.Hex(), nil
}

// Update applies a partial update. Returns true if a record was modified.
func (r *UserRepository) Update(ctx context.Context, id string, update auth.UserUpdate) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, oops.Code("USER_INVALID_ID").With("id", id).Wrap(err)
	}

	set := bson.M{}
	if update.Username != "" {
		set["username"] = update.Username
	}
	if update.Email != "" {
		set["email"] = update.Email
	}
	if update.PasswordHash != "" {
		set["password_hash"] = update.PasswordHash
	}
	if len(set) == 0 {
		return false, nil
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return false, oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user").
			With("id", id).
			Wrap(err)
	}
	return result.ModifiedCount > 0, nil
}

// Delete removes a user. Returns true if a record was deleted.
func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, oops.Code("USER_INVALID_ID").With("id", id).Wrap(err)
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, oops.Code("USER_DELETE_FAILED").
			With("operation", "delete user").
			With("id", id).
			Wrap(err)
	}
	return result.DeletedCount > 0, nil
}
