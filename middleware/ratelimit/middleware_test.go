package ratelimit

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func setupApp(t *testing.T, opts ...Option) *fiber.App {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at localhost:6379: %v", err)
	}

	opts = append(opts, WithKeyPrefix("test:"+t.Name()+":"))

	app := fiber.New()
	app.Use(New(client, "api", opts...))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	t.Cleanup(func() {
		cleanup := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
		defer cleanup.Close()
		iter := cleanup.Scan(context.Background(), 0, "test:"+t.Name()+":*", 100).Iterator()
		for iter.Next(context.Background()) {
			cleanup.Del(context.Background(), iter.Val())
		}
		client.Close()
	})
	return app
}

func TestMiddleware_AllowsUnderLimit(t *testing.T) {
	app := setupApp(t, WithDefaultLimit(5, time.Minute))

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, resp.StatusCode)
		}
	}
}

func TestMiddleware_BlocksOverLimit(t *testing.T) {
	app := setupApp(t, WithDefaultLimit(2, time.Minute))

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
}

func TestMiddleware_SetsRateLimitHeaders(t *testing.T) {
	app := setupApp(t, WithDefaultLimit(10, time.Minute))

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	if got := resp.Header.Get("X-RateLimit-Limit"); got != "10" {
		t.Errorf("X-RateLimit-Limit = %q, want 10", got)
	}
	if got := resp.Header.Get("X-RateLimit-Remaining"); got != "9" {
		t.Errorf("X-RateLimit-Remaining = %q, want 9", got)
	}
	if got := resp.Header.Get("X-RateLimit-Reset"); got == "" {
		t.Error("X-RateLimit-Reset header not set")
	}
}

func TestMiddleware_RouteLimitOverridesDefault(t *testing.T) {
	app := setupApp(t,
		WithDefaultLimit(100, time.Minute),
		WithRouteLimit("api", 1, time.Minute),
	)

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("first request status = %d, want 200", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/ping", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", resp.StatusCode)
	}
}
