// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyfold Contributors

package memstore_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfold/keyfold/internal/auth"
	"github.com/keyfold/keyfold/internal/auth/memstore"
)

func testAccount(t *testing.T, username, email string) *auth.Account {
	t.Helper()
	account, err := auth.NewAccount(username, email, auth.RoleUser, "$argon2id$v=19$m=8192,t=1,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA")
	require.NoError(t, err)
	return account
}

func TestStore_InsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	t.Run("inserts into empty store", func(t *testing.T) {
		inserted, err := store.InsertIfAbsent(ctx, testAccount(t, "alice", "alice@example.com"))
		require.NoError(t, err)
		assert.True(t, inserted)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		inserted, err := store.InsertIfAbsent(ctx, testAccount(t, "alice", "elsewhere@example.com"))
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("different username inserts", func(t *testing.T) {
		inserted, err := store.InsertIfAbsent(ctx, testAccount(t, "bob", "bob@example.com"))
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.Equal(t, 2, store.Len())
	})
}

func TestStore_FindByUsername(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	_, err := store.InsertIfAbsent(ctx, testAccount(t, "alice", "alice@example.com"))
	require.NoError(t, err)

	t.Run("finds existing account", func(t *testing.T) {
		account, err := store.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", account.Username)
		assert.Equal(t, "alice@example.com", account.Email)
	})

	t.Run("username match is exact", func(t *testing.T) {
		_, err := store.FindByUsername(ctx, "Alice")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("missing account returns ErrNotFound", func(t *testing.T) {
		_, err := store.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestStore_FindByEmail(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	_, err := store.InsertIfAbsent(ctx, testAccount(t, "alice", "alice@example.com"))
	require.NoError(t, err)

	t.Run("finds by email case-insensitively", func(t *testing.T) {
		account, err := store.FindByEmail(ctx, "ALICE@example.COM")
		require.NoError(t, err)
		assert.Equal(t, "alice", account.Username)
	})

	t.Run("missing email returns ErrNotFound", func(t *testing.T) {
		_, err := store.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	_, err := store.InsertIfAbsent(ctx, testAccount(t, "alice", "alice@example.com"))
	require.NoError(t, err)

	got, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	got.PasswordHash = "tampered"

	again, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "tampered", again.PasswordHash, "stored record must not be mutable through returned pointer")
}

func TestStore_ConcurrentInsertSameUsername(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	const n = 16
	wins := make([]bool, n)
	account := testAccount(t, "alice", "alice@example.com")

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := store.InsertIfAbsent(ctx, account)
			assert.NoError(t, err)
			wins[i] = inserted
		}()
	}
	wg.Wait()

	var winners int
	for _, won := range wins {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent insert wins")
	assert.Equal(t, 1, store.Len())
}
