package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func setupStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	return storage
}

// testServer serves the auth endpoints with fixed behavior.
func testServer(t *testing.T, validToken string, user User) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "correct" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "bad_request", "message": "Invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(AuthResponse{Token: validToken, User: user})
	})
	mux.HandleFunc("/api/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(AuthResponse{Token: validToken, User: user})
	})
	mux.HandleFunc("/api/v1/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+validToken {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized", "message": "Invalid or expired token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"valid": true, "user": user})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testUser() User {
	return User{ID: "user-1", Name: "Alice", Email: "a@example.com"}
}

func TestSessionStore_HydrateWithoutToken(t *testing.T) {
	srv := testServer(t, "good-token", testUser())
	storage := setupStorage(t)
	store := NewSessionStore(NewAPIClient(srv.URL), storage)

	if !store.Loading() {
		t.Error("Loading() = false before Hydrate")
	}

	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	if store.Loading() {
		t.Error("Loading() = true after Hydrate")
	}
	if store.Authenticated() {
		t.Error("Authenticated() = true with no stored token")
	}
}

func TestSessionStore_HydrateWithValidToken(t *testing.T) {
	srv := testServer(t, "good-token", testUser())
	storage := setupStorage(t)

	if err := storage.SaveToken("good-token"); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	store := NewSessionStore(NewAPIClient(srv.URL), storage)
	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	if !store.Authenticated() {
		t.Fatal("Authenticated() = false with a valid stored token")
	}
	if got := store.CurrentUser(); got == nil || got.ID != "user-1" {
		t.Errorf("CurrentUser() = %v, want user-1", got)
	}
}

// A stored token the server rejects must clear the storage and leave
// the session unauthenticated, not error out.
func TestSessionStore_HydrateWithRejectedTokenFailsClosed(t *testing.T) {
	srv := testServer(t, "good-token", testUser())
	storage := setupStorage(t)

	if err := storage.SaveToken("stale-token"); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}
	if err := storage.SaveUser(&User{ID: "user-1"}); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}

	store := NewSessionStore(NewAPIClient(srv.URL), storage)
	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	if store.Authenticated() {
		t.Error("Authenticated() = true after server rejected the token")
	}
	if store.Loading() {
		t.Error("Loading() = true after Hydrate")
	}

	token, err := storage.LoadToken()
	if err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}
	if token != "" {
		t.Errorf("stored token = %q, want cleared", token)
	}
	user, err := storage.LoadUser()
	if err != nil {
		t.Fatalf("LoadUser() error = %v", err)
	}
	if user != nil {
		t.Errorf("stored user = %v, want cleared", user)
	}
}

// When the stale session cannot be removed from disk, Hydrate must
// surface the error instead of pretending the cleanup happened.
func TestSessionStore_HydrateReportsClearFailure(t *testing.T) {
	srv := testServer(t, "good-token", testUser())
	storage := setupStorage(t)

	if err := storage.SaveToken("stale-token"); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	// A non-empty directory in place of the user file makes Clear fail.
	userPath := filepath.Join(storage.dir, userFile)
	if err := os.MkdirAll(filepath.Join(userPath, "blocker"), 0o700); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	store := NewSessionStore(NewAPIClient(srv.URL), storage)
	if err := store.Hydrate(context.Background()); err == nil {
		t.Fatal("Hydrate() = nil, want error when the session cannot be cleared")
	}

	if store.Authenticated() {
		t.Error("Authenticated() = true after rejected token")
	}
	if store.Loading() {
		t.Error("Loading() = true after Hydrate")
	}
}

// An unreachable server is a verify failure too: fail closed.
func TestSessionStore_HydrateWithUnreachableServerFailsClosed(t *testing.T) {
	storage := setupStorage(t)
	if err := storage.SaveToken("some-token"); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	store := NewSessionStore(NewAPIClient("http://127.0.0.1:1"), storage)
	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	if store.Authenticated() {
		t.Error("Authenticated() = true with unreachable server")
	}
	token, _ := storage.LoadToken()
	if token != "" {
		t.Errorf("stored token = %q, want cleared", token)
	}
}

func TestSessionStore_Login(t *testing.T) {
	srv := testServer(t, "good-token", testUser())
	storage := setupStorage(t)
	store := NewSessionStore(NewAPIClient(srv.URL), storage)

	if err := store.Login(context.Background(), "a@example.com", "correct"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if !store.Authenticated() {
		t.Fatal("Authenticated() = false after login")
	}
	if store.Token() != "good-token" {
		t.Errorf("Token() = %q, want good-token", store.Token())
	}

	// Token and user must both be durable.
	token, _ := storage.LoadToken()
	if token != "good-token" {
		t.Errorf("stored token = %q, want good-token", token)
	}
	user, _ := storage.LoadUser()
	if user == nil || user.Email != "a@example.com" {
		t.Errorf("stored user = %v, want a@example.com", user)
	}
}

// A failed login leaves the existing session alone.
func TestSessionStore_FailedLoginPreservesSession(t *testing.T) {
	srv := testServer(t, "good-token", testUser())
	storage := setupStorage(t)
	store := NewSessionStore(NewAPIClient(srv.URL), storage)

	if err := store.Login(context.Background(), "a@example.com", "correct"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := store.Login(context.Background(), "a@example.com", "wrong"); err == nil {
		t.Fatal("Login() with bad password succeeded, want error")
	}

	if !store.Authenticated() {
		t.Error("previous session lost after failed login")
	}
	token, _ := storage.LoadToken()
	if token != "good-token" {
		t.Errorf("stored token = %q, want good-token", token)
	}
}

// Register succeeds without adopting the session.
func TestSessionStore_RegisterDoesNotAdoptSession(t *testing.T) {
	srv := testServer(t, "good-token", testUser())
	storage := setupStorage(t)
	store := NewSessionStore(NewAPIClient(srv.URL), storage)

	if err := store.Register(context.Background(), "Alice", "a@example.com", "password"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if store.Authenticated() {
		t.Error("Authenticated() = true after register, want login required")
	}
	token, _ := storage.LoadToken()
	if token != "" {
		t.Errorf("stored token = %q, want none", token)
	}
}

func TestSessionStore_Logout(t *testing.T) {
	srv := testServer(t, "good-token", testUser())
	storage := setupStorage(t)
	store := NewSessionStore(NewAPIClient(srv.URL), storage)

	if err := store.Login(context.Background(), "a@example.com", "correct"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := store.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if store.Authenticated() {
		t.Error("Authenticated() = true after logout")
	}
	token, _ := storage.LoadToken()
	if token != "" {
		t.Errorf("stored token = %q, want cleared", token)
	}
	user, _ := storage.LoadUser()
	if user != nil {
		t.Errorf("stored user = %v, want cleared", user)
	}
}
