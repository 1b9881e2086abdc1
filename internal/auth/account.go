// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Registration failure sentinels.
var (
	ErrEmailTaken    = errors.New("email is already registered")
	ErrUsernameTaken = errors.New("username is already registered")
)

// AccountService covers registration and the read/update/delete glue around
// the user collection. Every write path hashes the password first; a raw
// password never reaches the store.
type AccountService struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(users UserRepository, hasher PasswordHasher, logger *slog.Logger) (*AccountService, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		users:  users,
		hasher: hasher,
		logger: logger,
	}, nil
}

// Register creates a new account after checking that neither the email nor
// the username is taken, and returns the new user's ID. The uniqueness
// checks are advisory; the store's indexes are the backstop.
func (s *AccountService) Register(ctx context.Context, params NewUserParams) (string, error) {
	if err := validate.Struct(params); err != nil {
		return "", oops.Code("AUTH_INVALID_INPUT").Wrap(err)
	}

	if _, err := s.users.FindByEmail(ctx, params.Email); err == nil {
		return "", oops.Code("AUTH_EMAIL_TAKEN").Wrap(ErrEmailTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return "", oops.Code("AUTH_REGISTER_FAILED").With("operation", "check email").Wrap(err)
	}

	if _, err := s.users.FindByUsername(ctx, params.Username); err == nil {
		return "", oops.Code("AUTH_USERNAME_TAKEN").Wrap(ErrUsernameTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return "", oops.Code("AUTH_REGISTER_FAILED").With("operation", "check username").Wrap(err)
	}

	user, err := NewUser(params, s.hasher)
	if err != nil {
		return "", err
	}

	id, err := s.users.Insert(ctx, user)
	if err != nil {
		return "", oops.Code("AUTH_REGISTER_FAILED").With("operation", "insert user").Wrap(err)
	}

	s.logger.Info("account registered", "user_id", id, "username", user.Username)
	return id, nil
}

// Get retrieves an account by ID.
func (s *AccountService) Get(ctx context.Context, id string) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateAccountParams carries a partial account update. Empty fields are
// left untouched; a supplied password is re-hashed before persisting.
type UpdateAccountParams struct {
	Username string `validate:"omitempty,min=3,max=64"`
	Email    string `validate:"omitempty,email,min=3,max=64"`
	Password string `validate:"omitempty,min=6,max=48"`
}

// Update applies a partial update to an account. Returns true if a record
// was modified.
func (s *AccountService) Update(ctx context.Context, id string, params UpdateAccountParams) (bool, error) {
	if err := validate.Struct(params); err != nil {
		return false, oops.Code("AUTH_INVALID_INPUT").Wrap(err)
	}

	update := UserUpdate{
		Username: params.Username,
		Email:    params.Email,
	}
	if params.Password != "" {
		hash, err := s.hasher.Hash(params.Password)
		if err != nil {
			return false, oops.Code("AUTH_HASH_FAILED").Wrap(err)
		}
		update.PasswordHash = hash
	}

	if update.IsEmpty() {
		return false, nil
	}

	modified, err := s.users.Update(ctx, id, update)
	if err != nil {
		return false, oops.Code("AUTH_UPDATE_FAILED").With("user_id", id).Wrap(err)
	}
	return modified, nil
}

// Delete removes an account. Returns true if a record was deleted. Sessions
// already issued for the user stay valid until they expire; there is no
// revocation path.
func (s *AccountService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return false, oops.Code("AUTH_DELETE_FAILED").With("user_id", id).Wrap(err)
	}
	if deleted {
		s.logger.Info("account deleted", "user_id", id)
	}
	return deleted, nil
}
