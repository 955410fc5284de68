package client

import (
	"context"
	"log"
	"sync"
)

// SessionStore holds the authenticated session for a frontend process.
// It mirrors the durable token + user pair in Storage: the in-memory
// view and the stored view change together.
type SessionStore struct {
	api     *APIClient
	storage *Storage

	mu      sync.RWMutex
	token   string
	user    *User
	loading bool
}

// NewSessionStore creates a session store over the given API client
// and storage. The session starts in the loading state until Hydrate
// settles it.
func NewSessionStore(api *APIClient, storage *Storage) *SessionStore {
	return &SessionStore{
		api:     api,
		storage: storage,
		loading: true,
	}
}

// Hydrate restores the session from storage at startup. A stored token
// is verified against the server; on any failure the storage is
// cleared and the session settles unauthenticated (fail closed).
func (s *SessionStore) Hydrate(ctx context.Context) error {
	defer s.settle()

	token, err := s.storage.LoadToken()
	if err != nil {
		if clearErr := s.clear(); clearErr != nil {
			log.Printf("[session] Failed to clear stored session: %v", clearErr)
		}
		return err
	}
	if token == "" {
		return nil
	}

	user, err := s.api.Verify(ctx, token)
	if err != nil {
		log.Printf("[session] Stored token rejected, clearing session: %v", err)
		// The rejected token must not survive on disk.
		return s.clear()
	}

	if err := s.storage.SaveUser(user); err != nil {
		if clearErr := s.clear(); clearErr != nil {
			log.Printf("[session] Failed to clear stored session: %v", clearErr)
		}
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return nil
}

// Login authenticates and adopts the session on success. On failure
// the previous session state is left untouched.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := s.storage.SaveToken(resp.Token); err != nil {
		return err
	}
	if err := s.storage.SaveUser(&resp.User); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = resp.Token
	s.user = &resp.User
	s.mu.Unlock()
	return nil
}

// Register creates an account. It does not adopt the session; callers
// direct the user to log in afterwards.
func (s *SessionStore) Register(ctx context.Context, name, email, password string) error {
	_, err := s.api.Register(ctx, name, email, password)
	return err
}

// Logout clears the session locally. No server call is made; the token
// simply expires.
func (s *SessionStore) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return s.storage.Clear()
}

// Authenticated reports whether a token and user are both present.
func (s *SessionStore) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Loading reports whether the session is still hydrating. While true,
// the session is neither authenticated nor unauthenticated.
func (s *SessionStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Token returns the current session token, or "" when unauthenticated.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUser returns the current user, or nil when unauthenticated.
func (s *SessionStore) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *SessionStore) clear() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return s.storage.Clear()
}

func (s *SessionStore) settle() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}
