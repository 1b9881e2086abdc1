// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

package invoice

import "errors"

// ErrNotFound indicates no invoice exists for the given ID.
var ErrNotFound = errors.New("invoice not found")
