// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyfold Contributors

package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/keyfold/keyfold/internal/auth"
	"github.com/keyfold/keyfold/internal/auth/memstore"
	"github.com/keyfold/keyfold/internal/httpapi"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// cheap argon2id parameters for tests
var testParams = auth.Argon2Params{Time: 1, MemoryKiB: 8 * 1024, Threads: 2}

func newTestServer(t *testing.T) *httpapi.Server {
	t.Helper()
	svc, err := auth.NewService(memstore.New(), auth.NewArgon2idHasher(testParams))
	require.NoError(t, err)
	server, err := httpapi.NewServer("127.0.0.1:0", svc, nil)
	require.NoError(t, err)
	return server
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

const registerBody = `{"username":"alice","email":"alice@example.com","role":"user","password":"Sup3r.pass"}`

func TestRegisterEndpoint(t *testing.T) {
	t.Run("valid registration returns profile", func(t *testing.T) {
		handler := newTestServer(t).Handler()

		rec := doJSON(t, handler, http.MethodPost, "/v1/register", registerBody)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "alice@example.com", body["email"])
		assert.Equal(t, "user", body["role"])
		assert.NotContains(t, body, "password")
		assert.NotContains(t, rec.Body.String(), "Sup3r.pass")
		assert.NotContains(t, rec.Body.String(), "argon2id")
	})

	t.Run("validation failure returns 400 with reason", func(t *testing.T) {
		handler := newTestServer(t).Handler()

		rec := doJSON(t, handler, http.MethodPost, "/v1/register",
			`{"username":"alice","email":"not-an-email","role":"user","password":"Sup3r.pass"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "email")
	})

	t.Run("duplicate username returns 409", func(t *testing.T) {
		handler := newTestServer(t).Handler()

		rec := doJSON(t, handler, http.MethodPost, "/v1/register", registerBody)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, handler, http.MethodPost, "/v1/register", registerBody)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		handler := newTestServer(t).Handler()

		rec := doJSON(t, handler, http.MethodPost, "/v1/register", `{not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("GET is not allowed", func(t *testing.T) {
		handler := newTestServer(t).Handler()

		rec := doJSON(t, handler, http.MethodGet, "/v1/register", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("valid credentials return 200 with empty body", func(t *testing.T) {
		handler := newTestServer(t).Handler()

		rec := doJSON(t, handler, http.MethodPost, "/v1/register", registerBody)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, handler, http.MethodPost, "/v1/login",
			`{"username":"alice","password":"Sup3r.pass"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("unknown username and wrong password are indistinguishable", func(t *testing.T) {
		handler := newTestServer(t).Handler()

		rec := doJSON(t, handler, http.MethodPost, "/v1/register", registerBody)
		require.Equal(t, http.StatusOK, rec.Code)

		unknown := doJSON(t, handler, http.MethodPost, "/v1/login",
			`{"username":"nobody","password":"Sup3r.pass"}`)
		wrong := doJSON(t, handler, http.MethodPost, "/v1/login",
			`{"username":"alice","password":"Wrong.pass1"}`)

		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	})

	t.Run("validation failure returns 400", func(t *testing.T) {
		handler := newTestServer(t).Handler()

		rec := doJSON(t, handler, http.MethodPost, "/v1/login",
			`{"username":"ab","password":"Sup3r.pass"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		handler := newTestServer(t).Handler()

		rec := doJSON(t, handler, http.MethodPost, "/v1/login", `{not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_StartStop(t *testing.T) {
	server := newTestServer(t)

	errCh, err := server.Start()
	require.NoError(t, err)
	assert.True(t, server.Running())
	assert.NotEmpty(t, server.Addr())

	// Second start fails while running
	_, err = server.Start()
	require.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))
	assert.False(t, server.Running())

	// The error channel closes on graceful shutdown.
	select {
	case serveErr, ok := <-errCh:
		assert.False(t, ok, "unexpected serve error: %v", serveErr)
	case <-time.After(2 * time.Second):
		t.Fatal("error channel did not close after Stop")
	}
}

func TestNewServer_NilService(t *testing.T) {
	server, err := httpapi.NewServer("127.0.0.1:0", nil, nil)
	require.Error(t, err)
	assert.Nil(t, server)
}
