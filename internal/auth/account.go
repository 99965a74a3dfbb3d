// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyfold Contributors

package auth

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role is an account's authorization role.
type Role string

// Supported account roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a supported role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole converts a raw role string into a Role.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !role.Valid() {
		return "", oops.Code("AUTH_INVALID_INPUT").
			With("field", "role").
			Errorf("role must be %q or %q", RoleUser, RoleAdmin)
	}
	return role, nil
}

// Account is a registered credential record. The username is the primary
// key and is immutable once the account is created. PasswordHash is a
// PHC-format string with the per-account salt embedded; it must never
// appear in any outward-facing representation.
type Account struct {
	ID           ulid.ULID
	Username     string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// NewAccount creates a validated Account. The password hash must already
// be computed; NewAccount does not accept plaintext.
func NewAccount(username, email string, role Role, passwordHash string) (*Account, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, oops.Code("AUTH_INVALID_INPUT").
			With("field", "role").
			Errorf("role must be %q or %q", RoleUser, RoleAdmin)
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	return &Account{
		ID:           ulid.Make(),
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}, nil
}

// Profile is the outward-facing view of an account. It carries no
// secret material.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Profile returns the outward-facing view of the account.
func (a *Account) Profile() Profile {
	return Profile{
		Username: a.Username,
		Email:    a.Email,
		Role:     a.Role,
	}
}
