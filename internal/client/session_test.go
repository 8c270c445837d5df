package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenStore(t *testing.T) *FileTokenStore {
	t.Helper()
	ts, err := NewFileTokenStore(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, err)
	return ts
}

func TestSessionManagerBootstrapWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected without a stored token")
	}))
	defer srv.Close()

	s := NewSessionManager(NewAPI(srv.URL), newTokenStore(t))
	require.NoError(t, s.Bootstrap(context.Background()))
	assert.False(t, s.IsAuthenticated())
}

func TestSessionManagerBootstrapRestoresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/validate", r.URL.Path)
		require.Equal(t, "Bearer stored-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{"username": "company11"})
	}))
	defer srv.Close()

	tokens := newTokenStore(t)
	require.NoError(t, tokens.Write("stored-token"))

	s := NewSessionManager(NewAPI(srv.URL), tokens)
	require.NoError(t, s.Bootstrap(context.Background()))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "company11", s.Username())
	assert.Equal(t, "stored-token", s.Token())
}

func TestSessionManagerBootstrapFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Session expired. Please sign in again."})
	}))
	defer srv.Close()

	tokens := newTokenStore(t)
	require.NoError(t, tokens.Write("stale-token"))

	s := NewSessionManager(NewAPI(srv.URL), tokens)

	// A stale token is discarded without surfacing an error.
	require.NoError(t, s.Bootstrap(context.Background()))
	assert.False(t, s.IsAuthenticated())

	stored, err := tokens.Read()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSessionManagerLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)

		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))

		if creds.Password != "company123" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid username or password"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "fresh-token",
			"user":  map[string]string{"username": creds.Username},
		})
	}))
	defer srv.Close()

	tokens := newTokenStore(t)
	s := NewSessionManager(NewAPI(srv.URL), tokens)

	err := s.Login(context.Background(), "company11", "wrong")
	require.Error(t, err)
	assert.EqualError(t, err, "Invalid username or password")
	assert.EqualError(t, s.LastError(), "Invalid username or password")
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Login(context.Background(), "company11", "company123"))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "company11", s.Username())
	assert.NoError(t, s.LastError())

	stored, err := tokens.Read()
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", stored)
}

func TestSessionManagerLogoutAlwaysClears(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Server-side invalidation failing must not keep the client
		// signed in.
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tokens := newTokenStore(t)
	require.NoError(t, tokens.Write("some-token"))

	s := NewSessionManager(NewAPI(srv.URL), tokens)
	s.token = "some-token"
	s.username = "company11"

	s.Logout(context.Background())

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Username())

	stored, err := tokens.Read()
	require.NoError(t, err)
	assert.Empty(t, stored)
}
