// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	"github.com/samber/oops"
)

// emailRegex decides whether a login identifier is email-shaped. Anchored:
// the whole identifier must match, so "a@@b" and "alice@" fall through to
// username lookup.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9_.+\-]+@[a-zA-Z0-9\-]+\.[a-zA-Z0-9.\-]+$`)

// IdentifierKind is the result of classifying a login identifier.
type IdentifierKind int

// Identifier kinds.
const (
	IdentifierUsername IdentifierKind = iota
	IdentifierEmail
)

// ClassifyIdentifier determines whether identifier should be looked up as an
// email address or a username.
func ClassifyIdentifier(identifier string) IdentifierKind {
	if emailRegex.MatchString(identifier) {
		return IdentifierEmail
	}
	return IdentifierUsername
}

// Service coordinates login: classify the identifier, look the user up,
// verify the password, issue a session.
type Service struct {
	users    UserRepository
	sessions *SessionRepository
	hasher   PasswordHasher
	logger   *slog.Logger
}

// NewService creates a login Service.
func NewService(users UserRepository, sessions *SessionRepository, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithLogger(users, sessions, hasher, slog.Default())
}

// NewServiceWithLogger creates a login Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, sessions *SessionRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("user repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("session repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("logger is required")
	}
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		logger:   logger,
	}, nil
}

// Login authenticates by username or email and issues a session on success.
//
// All credential failures collapse into ErrInvalidCredentials: the caller
// cannot distinguish an unknown identifier from a wrong password, which
// keeps the endpoint from being used for user enumeration. Logs keep the
// distinction. Store or session-issuance failures surface as their own
// errors; no session is ever created on a failed attempt.
func (s *Service) Login(ctx context.Context, identifier, password string) (*SessionResponse, error) {
	if identifier == "" || password == "" {
		s.logger.Debug("login rejected before lookup", "reason", "empty identifier or password")
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	var (
		user      *User
		lookupErr error
	)
	kind := ClassifyIdentifier(identifier)
	if kind == IdentifierEmail {
		user, lookupErr = s.users.FindByEmail(ctx, identifier)
	} else {
		user, lookupErr = s.users.FindByUsername(ctx, identifier)
	}

	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			// Unknown identifier short-circuits; the hasher is never
			// invoked for a user that does not exist.
			s.logger.Debug("login failed", "reason", "no matching user", "kind", kindLabel(kind))
			return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "look up user").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, user.PasswordHash)
	if verifyErr != nil {
		// A stored hash that cannot be parsed is data corruption. It is a
		// verification failure to the caller, but it must stand out from a
		// plain mismatch in the logs.
		s.logger.Error("stored password hash is malformed",
			"user_id", user.ID.Hex(),
			"error", verifyErr,
		)
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}
	if !valid {
		s.logger.Debug("login failed", "reason", "password mismatch", "user_id", user.ID.Hex())
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	resp, err := s.sessions.Issue(ctx, user.ID.Hex())
	if err != nil {
		return nil, oops.Code("AUTH_SESSION_ISSUE_FAILED").
			With("user_id", user.ID.Hex()).
			Wrap(err)
	}

	s.logger.Info("login succeeded", "user_id", user.ID.Hex(), "exp", resp.Exp)
	return &resp, nil
}

func kindLabel(kind IdentifierKind) string {
	if kind == IdentifierEmail {
		return "email"
	}
	return "username"
}
