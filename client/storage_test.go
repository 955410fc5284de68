package client

import (
	"testing"
)

func TestStorage_TokenRoundTrip(t *testing.T) {
	storage := setupStorage(t)

	token, err := storage.LoadToken()
	if err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}
	if token != "" {
		t.Errorf("LoadToken() on empty storage = %q, want empty", token)
	}

	if err := storage.SaveToken("first"); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	// A second save replaces the first wholesale.
	if err := storage.SaveToken("second"); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	token, err = storage.LoadToken()
	if err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}
	if token != "second" {
		t.Errorf("LoadToken() = %q, want second", token)
	}
}

func TestStorage_UserRoundTrip(t *testing.T) {
	storage := setupStorage(t)

	user, err := storage.LoadUser()
	if err != nil {
		t.Fatalf("LoadUser() error = %v", err)
	}
	if user != nil {
		t.Errorf("LoadUser() on empty storage = %v, want nil", user)
	}

	want := &User{ID: "u-1", Name: "Alice", Email: "a@example.com"}
	if err := storage.SaveUser(want); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}

	user, err = storage.LoadUser()
	if err != nil {
		t.Fatalf("LoadUser() error = %v", err)
	}
	if user == nil || *user != *want {
		t.Errorf("LoadUser() = %v, want %v", user, want)
	}
}

func TestStorage_Clear(t *testing.T) {
	storage := setupStorage(t)

	if err := storage.SaveToken("token"); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}
	if err := storage.SaveUser(&User{ID: "u-1"}); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}

	if err := storage.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	token, _ := storage.LoadToken()
	if token != "" {
		t.Errorf("token after Clear() = %q, want empty", token)
	}
	user, _ := storage.LoadUser()
	if user != nil {
		t.Errorf("user after Clear() = %v, want nil", user)
	}

	// Clearing empty storage is not an error.
	if err := storage.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}
