// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyfold Contributors

package auth

import "context"

// CredentialStore manages account records keyed by username.
//
// Implementations must be safe for concurrent use. InsertIfAbsent is
// the uniqueness enforcement point: the existence check and the write
// form one indivisible step, so two concurrent inserts for the same
// username resolve to exactly one winner. Readers must only ever
// observe fully constructed records.
type CredentialStore interface {
	// FindByUsername retrieves an account by username.
	// Returns ErrNotFound if no account exists.
	FindByUsername(ctx context.Context, username string) (*Account, error)

	// FindByEmail retrieves an account by email (case-insensitive).
	// Linear scan semantics are acceptable.
	// Returns ErrNotFound if no account has the given email.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// InsertIfAbsent atomically creates the record unless an account
	// already exists for its username. Returns whether the insert
	// happened.
	InsertIfAbsent(ctx context.Context, account *Account) (bool, error)
}
