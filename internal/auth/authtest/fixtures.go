// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

// Package authtest provides test doubles for the auth package.
package authtest

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/billfold/billfold/internal/auth"
)

// UserRepo is an in-memory auth.UserRepository backed by maps. It also
// counts lookups so tests can assert which paths were taken.
type UserRepo struct {
	mu sync.Mutex

	byID       map[string]*auth.User
	byUsername map[string]*auth.User
	byEmail    map[string]*auth.User
	nextID     int

	UsernameLookups int
	EmailLookups    int

	// Err, when set, is returned by every operation.
	Err error
}

// NewUserRepo creates an empty UserRepo.
func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:       make(map[string]*auth.User),
		byUsername: make(map[string]*auth.User),
		byEmail:    make(map[string]*auth.User),
	}
}

// FindByUsername returns the user with the given username.
func (r *UserRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UsernameLookups++
	if r.Err != nil {
		return nil, r.Err
	}
	if u, ok := r.byUsername[username]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, auth.ErrNotFound
}

// FindByEmail returns the user with the given email.
func (r *UserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.EmailLookups++
	if r.Err != nil {
		return nil, r.Err
	}
	if u, ok := r.byEmail[email]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, auth.ErrNotFound
}

// GetByID returns the user with the given ID.
func (r *UserRepo) GetByID(_ context.Context, id string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if u, ok := r.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, auth.ErrNotFound
}

// Insert stores the user and returns a generated ID.
func (r *UserRepo) Insert(_ context.Context, user *auth.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	r.nextID++
	id := formatID(r.nextID)
	copied := *user
	if copied.ID.IsZero() {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return "", err
		}
		copied.ID = oid
	}
	r.byID[id] = &copied
	r.byUsername[user.Username] = &copied
	r.byEmail[user.Email] = &copied
	return id, nil
}

// Update applies a partial update.
func (r *UserRepo) Update(_ context.Context, id string, update auth.UserUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	u, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	if update.Username != "" {
		delete(r.byUsername, u.Username)
		u.Username = update.Username
		r.byUsername[u.Username] = u
	}
	if update.Email != "" {
		delete(r.byEmail, u.Email)
		u.Email = update.Email
		r.byEmail[u.Email] = u
	}
	if update.PasswordHash != "" {
		u.PasswordHash = update.PasswordHash
	}
	return true, nil
}

// Delete removes the user with the given ID.
func (r *UserRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	u, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	delete(r.byID, id)
	delete(r.byUsername, u.Username)
	delete(r.byEmail, u.Email)
	return true, nil
}

// Seed inserts a user and returns its generated ID. Panics on repo error;
// only for test setup.
func (r *UserRepo) Seed(user *auth.User) string {
	id, err := r.Insert(context.Background(), user)
	if err != nil {
		panic(err)
	}
	return id
}

func formatID(n int) string {
	// 24 hex chars so auth/mongo-style object IDs parse in tests.
	const digits = "0123456789abcdef"
	id := make([]byte, 24)
	for i := range id {
		id[i] = '0'
	}
	for i := 23; n > 0 && i >= 0; i-- {
		id[i] = digits[n%16]
		n /= 16
	}
	return string(id)
}

// PlainHasher is an auth.PasswordHasher that stores passwords with a fixed
// prefix instead of hashing. Calls to both methods are counted.
type PlainHasher struct {
	mu sync.Mutex

	HashCalls   int
	VerifyCalls int

	// HashErr and VerifyErr, when set, are returned by the respective call.
	HashErr   error
	VerifyErr error
}

const plainPrefix = "plain:"

// Hash returns the password with a fixed prefix.
func (h *PlainHasher) Hash(password string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.HashCalls++
	if h.HashErr != nil {
		return "", h.HashErr
	}
	return plainPrefix + password, nil
}

// Verify compares the password against a prefix-encoded hash.
func (h *PlainHasher) Verify(password, hash string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.VerifyCalls++
	if h.VerifyErr != nil {
		return false, h.VerifyErr
	}
	return hash == plainPrefix+password, nil
}
