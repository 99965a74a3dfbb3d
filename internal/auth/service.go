// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyfold Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Service orchestrates registration and login against a credential
// store and a password hasher.
type Service struct {
	store  CredentialStore
	hasher PasswordHasher
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(store CredentialStore, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithLogger(store, hasher, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(store CredentialStore, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, oops.Errorf("credential store is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		store:  store,
		hasher: hasher,
		logger: logger,
	}, nil
}

// dummyPasswordHash is used when a username doesn't exist so login still
// performs a verification and response time stays consistent. This is
// NOT a real credential - it is a fake hash that will never match any
// password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register validates the request, hashes the password, and atomically
// inserts a new account. The digest is computed before the insert and
// no store lock is held while hashing; uniqueness is decided solely by
// the store's insert-if-absent step.
//
// Outcomes are carried as coded errors: AUTH_INVALID_INPUT for a
// validation failure, AUTH_USERNAME_TAKEN for a duplicate username, and
// AUTH_REGISTER_FAILED for internal faults. The returned Profile never
// contains the plaintext password, the salt, or the digest.
func (s *Service) Register(ctx context.Context, req RegistrationRequest) (*Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	role, err := ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account, err := NewAccount(req.Username, req.Email, role, passwordHash)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create account").
			Wrap(err)
	}

	inserted, err := s.store.InsertIfAbsent(ctx, account)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}
	if !inserted {
		return nil, oops.Code("AUTH_USERNAME_TAKEN").
			With("username", req.Username).
			Errorf("username %q is already taken", req.Username)
	}

	s.logger.InfoContext(ctx, "account registered",
		"username", account.Username,
		"role", account.Role,
	)

	profile := account.Profile()
	return &profile, nil
}

// Login validates the request and verifies the password against the
// stored digest. Unknown username and wrong password produce the same
// AUTH_INVALID_CREDENTIALS error with identical message text, so the
// outcome carries no username enumeration signal. A dummy verification
// runs when the username is unknown to keep response time consistent.
func (s *Service) Login(ctx context.Context, req LoginRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	account, lookupErr := s.store.FindByUsername(ctx, req.Username)

	var targetHash string
	var accountExists bool

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "find account by username").
				Wrap(lookupErr)
		}
		targetHash = dummyPasswordHash
	} else {
		targetHash = account.PasswordHash
		accountExists = true
	}

	valid, verifyErr := s.hasher.Verify(req.Password, targetHash)
	if verifyErr != nil {
		if !accountExists {
			return errInvalidCredentials()
		}
		return oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !accountExists || !valid {
		return errInvalidCredentials()
	}

	s.logger.InfoContext(ctx, "login succeeded", "username", account.Username)
	return nil
}

// errInvalidCredentials is the single unauthorized outcome. The message
// must stay identical for unknown-username and wrong-password cases.
func errInvalidCredentials() error {
	return oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid username or password")
}
