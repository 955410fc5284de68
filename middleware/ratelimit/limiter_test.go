package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func setupLimiter(t *testing.T) *Limiter {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at localhost:6379: %v", err)
	}

	limiter := NewLimiter(client, "test:"+t.Name()+":")
	t.Cleanup(func() {
		limiter.Reset(context.Background(), "key")
		client.Close()
	})
	return limiter
}

func TestLimiter_AllowWithinLimit(t *testing.T) {
	limiter := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := limiter.Allow(ctx, "key", 5, time.Minute)
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !result.Allowed {
			t.Fatalf("request %d was denied, want allowed", i+1)
		}
		if want := 5 - i - 1; result.Remaining != want {
			t.Errorf("request %d: Remaining = %d, want %d", i+1, result.Remaining, want)
		}
	}
}

func TestLimiter_DenyOverLimit(t *testing.T) {
	limiter := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := limiter.Allow(ctx, "key", 3, time.Minute); err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
	}

	result, err := limiter.Allow(ctx, "key", 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if result.Allowed {
		t.Error("request over the limit was allowed")
	}
	if result.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", result.Remaining)
	}
	if result.ResetAt.Before(time.Now()) {
		t.Errorf("ResetAt = %v is in the past", result.ResetAt)
	}
}

func TestLimiter_WindowSlides(t *testing.T) {
	limiter := setupLimiter(t)
	ctx := context.Background()

	window := 200 * time.Millisecond

	for i := 0; i < 2; i++ {
		if _, err := limiter.Allow(ctx, "key", 2, window); err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
	}

	result, err := limiter.Allow(ctx, "key", 2, window)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if result.Allowed {
		t.Fatal("request over the limit was allowed")
	}

	// Wait for the window to pass, then the request should go through.
	time.Sleep(window + 50*time.Millisecond)

	result, err = limiter.Allow(ctx, "key", 2, window)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !result.Allowed {
		t.Error("request after window expiry was denied")
	}
}

func TestLimiter_Reset(t *testing.T) {
	limiter := setupLimiter(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := limiter.Allow(ctx, "key", 2, time.Minute); err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
	}

	if err := limiter.Reset(ctx, "key"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	count, err := limiter.Count(ctx, "key", time.Minute)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() after reset = %d, want 0", count)
	}
}

func TestLimiter_IndependentKeys(t *testing.T) {
	limiter := setupLimiter(t)
	ctx := context.Background()
	defer limiter.Reset(ctx, "other")

	for i := 0; i < 2; i++ {
		if _, err := limiter.Allow(ctx, "key", 2, time.Minute); err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
	}

	result, err := limiter.Allow(ctx, "other", 2, time.Minute)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !result.Allowed {
		t.Error("request on an independent key was denied")
	}
}
