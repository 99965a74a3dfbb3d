// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyfold Contributors

// Package memstore provides the in-memory CredentialStore. The store is
// volatile: records live for the lifetime of the process.
package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/keyfold/keyfold/internal/auth"
)

// Store is a mutex-guarded map of username to account. It implements
// auth.CredentialStore. Records are stored and returned by value copy,
// so readers never observe a half-built record and callers cannot
// mutate stored state through a returned pointer.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]auth.Account
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		accounts: make(map[string]auth.Account),
	}
}

// FindByUsername retrieves an account by exact username.
func (s *Store) FindByUsername(_ context.Context, username string) (*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &account, nil
}

// FindByEmail retrieves an account by email (case-insensitive). The
// scan is linear; email is not an index.
func (s *Store) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.accounts {
		if strings.EqualFold(account.Email, email) {
			found := account
			return &found, nil
		}
	}
	return nil, auth.ErrNotFound
}

// InsertIfAbsent creates the record unless the username is taken. The
// existence check and the write happen under one lock acquisition, so
// concurrent inserts for the same username resolve to exactly one
// winner.
func (s *Store) InsertIfAbsent(_ context.Context, account *auth.Account) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.Username]; exists {
		return false, nil
	}
	s.accounts[account.Username] = *account
	return true, nil
}

// Len returns the number of stored accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
