// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is the uniform login failure. An unknown identifier
// and a wrong password both map to this value so callers cannot tell them
// apart; logs carry the distinction.
var ErrInvalidCredentials = errors.New("invalid username/email or password")
