// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

package auth

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// validate checks inbound user params against the account schema.
var validate = validator.New(validator.WithRequiredStructEnabled())

// User is an account record as stored in the document store. Username and
// email are unique; uniqueness is enforced by the store's indexes, not here.
// PasswordHash only ever holds a PHC-encoded argon2id hash.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// NewUserParams carries raw registration input. Password is the plaintext
// password; it never leaves this package unhashed.
type NewUserParams struct {
	Username string `validate:"required,min=3,max=64"`
	Email    string `validate:"required,email,min=3,max=64"`
	Password string `validate:"required,min=6,max=48"`
}

// NewUser validates params and builds a User with a hashed password and a
// CreatedAt of now (UTC). The raw password is not retained.
func NewUser(params NewUserParams, hasher PasswordHasher) (*User, error) {
	if err := validate.Struct(params); err != nil {
		return nil, oops.Code("AUTH_INVALID_INPUT").Wrap(err)
	}

	hash, err := hasher.Hash(params.Password)
	if err != nil {
		return nil, oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}

	return &User{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// UserUpdate is a partial update of an account record. Empty fields are left
// untouched. PasswordHash must already be hashed by the caller.
type UserUpdate struct {
	Username     string
	Email        string
	PasswordHash string
}

// IsEmpty reports whether the update would touch nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == "" && u.Email == "" && u.PasswordHash == ""
}

// UserRepository manages account persistence in the document store. At most
// one user exists per username and per email.
type UserRepository interface {
	// FindByUsername retrieves a user by username.
	// Returns ErrNotFound if no user has the given username.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByEmail retrieves a user by email.
	// Returns ErrNotFound if no user has the given email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// GetByID retrieves a user by its hex object ID.
	GetByID(ctx context.Context, id string) (*User, error)

	// Insert stores a new user and returns its hex object ID.
	Insert(ctx context.Context, user *User) (string, error)

	// Update applies a partial update. Returns true if a record was modified.
	Update(ctx context.Context, id string, update UserUpdate) (bool, error)

	// Delete removes a user. Returns true if a record was deleted.
	Delete(ctx context.Context, id string) (bool, error)
}
