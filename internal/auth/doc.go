// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

// Package auth provides the credential and session core for Billfold.
//
// # Domain Types
//
// User is the account record as stored in the document store. Its password
// field only ever holds an argon2id hash; NewUser validates input and hashes
// the raw password before the record can reach any write path.
//
// SessionData and SessionResponse belong to the SessionRepository, the
// process-wide in-memory token table. Sessions are issued once at login and
// never mutated; they are deliberately not replicated or persisted, so a
// process restart invalidates all of them.
//
// # Services
//
// Service coordinates login: it classifies the identifier (email vs
// username), looks the user up, verifies the password and issues a session.
// AccountService covers registration and the read/update/delete glue around
// the user collection.
//
// All lookups go through the UserRepository interface so the document-store
// client stays behind a seam; the mongo implementation lives in the mongo
// subpackage.
package auth
