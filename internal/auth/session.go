// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Session token configuration.
const (
	SessionTokenBytes = 24             // 192 bits of entropy
	SessionValidity   = 72 * time.Hour // 3 days
)

// SessionData is the repository's record of an issued session. Created once
// at login, never mutated, reachable only by its token.
type SessionData struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Exp       time.Time `json:"exp"`
}

// IsExpiredAt returns true if the session would be expired at the given time.
func (s SessionData) IsExpiredAt(t time.Time) bool {
	return t.After(s.Exp)
}

// SessionResponse is the caller-facing shape of an issued session. Exp is
// serialized as integer epoch seconds.
type SessionResponse struct {
	Token string `json:"token"`
	Exp   int64  `json:"exp"`
}

// SessionRepository is the process-wide in-memory session table, keyed by
// token. Construct one at service start and pass it to the login service;
// it is strictly single-process and all entries are lost on restart.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]SessionData
}

// NewSessionRepository creates an empty session repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]SessionData),
	}
}

// Issue mints a session for userID: a fresh 24-byte random token, URL-safe
// base64 encoded, expiring SessionValidity from now (UTC). A token collision
// is treated as negligible but never silently overwrites another user's
// entry; generation is retried once, then the request fails.
func (r *SessionRepository) Issue(ctx context.Context, userID string) (SessionResponse, error) {
	if userID == "" {
		return SessionResponse{}, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be empty")
	}

	var issued SessionData

	backoff := retry.WithMaxRetries(1, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		token, err := generateSessionToken()
		if err != nil {
			return err
		}

		data := SessionData{
			UserID:    userID,
			SessionID: token,
			Exp:       time.Now().UTC().Add(SessionValidity),
		}

		r.mu.Lock()
		defer r.mu.Unlock()

		if existing, ok := r.sessions[token]; ok && existing.UserID != userID {
			return retry.RetryableError(
				oops.Code("SESSION_TOKEN_COLLISION").Errorf("generated token already in use"),
			)
		}
		r.sessions[token] = data
		issued = data
		return nil
	})
	if err != nil {
		return SessionResponse{}, err
	}

	return SessionResponse{
		Token: issued.SessionID,
		Exp:   issued.Exp.Unix(),
	}, nil
}

// Validate returns the session for token if it exists and has not expired.
// The reference system stored expiry but never checked it; this operation
// enforces it explicitly.
func (r *SessionRepository) Validate(token string) (*SessionData, error) {
	if token == "" {
		return nil, oops.Code("SESSION_TOKEN_EMPTY").Errorf("session token cannot be empty")
	}

	r.mu.RLock()
	data, ok := r.sessions[token]
	r.mu.RUnlock()

	if !ok {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(ErrNotFound)
	}
	if data.IsExpiredAt(time.Now().UTC()) {
		return nil, oops.Code("SESSION_EXPIRED").
			With("expired_at", data.Exp).
			Errorf("session has expired")
	}

	copied := data
	return &copied, nil
}

// Count returns the number of sessions held, expired entries included.
func (r *SessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// generateSessionToken creates a URL-safe token from SessionTokenBytes of
// cryptographically secure randomness.
func generateSessionToken() (string, error) {
	b := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
