package client

import (
	"context"
	"sync"
)

// SessionManager holds the bearer token and the logged-in user. On startup
// a stored token is validated against the server; a stale token is
// discarded and the caller lands on the login flow instead of an error.
type SessionManager struct {
	api    *API
	tokens TokenStore

	mu       sync.Mutex
	token    string
	username string
	lastErr  error
}

func NewSessionManager(api *API, tokens TokenStore) *SessionManager {
	return &SessionManager{api: api, tokens: tokens}
}

// Bootstrap restores a previous session if the stored token still
// validates. It fails open: any validation problem clears the token and
// leaves the manager unauthenticated without returning an error.
func (s *SessionManager) Bootstrap(ctx context.Context) error {
	token, err := s.tokens.Read()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	username, err := s.api.Validate(ctx, token)
	if err != nil {
		_ = s.tokens.Clear()
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.username = username
	s.mu.Unlock()
	return nil
}

func (s *SessionManager) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()

	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	if err := s.tokens.Write(resp.Token); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = resp.Token
	s.username = resp.User.Username
	s.mu.Unlock()
	return nil
}

// Logout invalidates the session server-side on a best-effort basis and
// always clears local state.
func (s *SessionManager) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token != "" {
		_ = s.api.Logout(ctx, token)
	}

	_ = s.tokens.Clear()

	s.mu.Lock()
	s.token = ""
	s.username = ""
	s.mu.Unlock()
}

func (s *SessionManager) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

func (s *SessionManager) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

func (s *SessionManager) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// LastError reports the most recent login failure, mirroring the error
// surface the login screen shows.
func (s *SessionManager) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
