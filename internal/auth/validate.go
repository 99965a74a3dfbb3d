// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyfold Contributors

package auth

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/samber/oops"
)

// Field length constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 24
	MinPasswordLength = 5
	MaxPasswordLength = 24
)

// passwordSpecials is the set of characters that satisfy the special
// character rule for passwords.
const passwordSpecials = "-+_!@#$%^&*.,?"

// RegistrationRequest is the raw input to Register. It is transient and
// never persisted.
type RegistrationRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// LoginRequest is the raw input to Login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ValidateUsername checks the username length bounds.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_INPUT").
			With("field", "username").
			Errorf("username is required")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_INPUT").
			With("field", "username").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_INPUT").
			With("field", "username").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	return nil
}

// ValidateEmail checks that email is a syntactically valid address.
// Bare addresses only; display names are rejected.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_INPUT").
			With("field", "email").
			Errorf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return oops.Code("AUTH_INVALID_INPUT").
			With("field", "email").
			Errorf("email is not a valid address")
	}
	return nil
}

// ValidatePassword checks the password rules: length bounds plus at
// least one lowercase letter, one uppercase letter, and one character
// from the special set. Each rule is checked explicitly so failures
// name the rule that was broken.
func ValidatePassword(password string) error {
	if password == "" {
		return oops.Code("AUTH_INVALID_INPUT").
			With("field", "password").
			Errorf("password is required")
	}
	if len(password) < MinPasswordLength {
		return oops.Code("AUTH_INVALID_INPUT").
			With("field", "password").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return oops.Code("AUTH_INVALID_INPUT").
			With("field", "password").
			With("max", MaxPasswordLength).
			Errorf("password must be at most %d characters", MaxPasswordLength)
	}

	var hasLower, hasUpper, hasSpecial bool
	for _, c := range password {
		switch {
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsUpper(c):
			hasUpper = true
		case strings.ContainsRune(passwordSpecials, c):
			hasSpecial = true
		}
	}

	if !hasLower {
		return oops.Code("AUTH_INVALID_INPUT").
			With("field", "password").
			Errorf("password must contain a lowercase letter")
	}
	if !hasUpper {
		return oops.Code("AUTH_INVALID_INPUT").
			With("field", "password").
			Errorf("password must contain an uppercase letter")
	}
	if !hasSpecial {
		return oops.Code("AUTH_INVALID_INPUT").
			With("field", "password").
			Errorf("password must contain one of %q", passwordSpecials)
	}
	return nil
}

// Validate checks all registration rules and returns the first
// violation. Validation is pure and has no side effects.
func (r RegistrationRequest) Validate() error {
	if err := ValidateUsername(r.Username); err != nil {
		return err
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if _, err := ParseRole(r.Role); err != nil {
		return err
	}
	return ValidatePassword(r.Password)
}

// Validate checks the login rules and returns the first violation.
func (r LoginRequest) Validate() error {
	if err := ValidateUsername(r.Username); err != nil {
		return err
	}
	return ValidatePassword(r.Password)
}
