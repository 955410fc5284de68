package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

const testRedisAddr = "localhost:6379"

func setupCache(t *testing.T) (*Cache, func()) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	prefix := "test:" + t.Name() + ":"
	c := New(client, prefix, time.Minute)

	cleanup := func() {
		c.DeletePattern(ctx, "*")
		client.Close()
	}
	return c, cleanup
}

type testValue struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestCache_SetGet(t *testing.T) {
	c, cleanup := setupCache(t)
	defer cleanup()

	ctx := context.Background()

	want := testValue{Name: "widget", Price: 9.99}
	if err := c.Set(ctx, "item:1", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got testValue
	found, err := c.Get(ctx, "item:1", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() found = false, want true")
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c, cleanup := setupCache(t)
	defer cleanup()

	var got testValue
	found, err := c.Get(context.Background(), "missing", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true for missing key")
	}

	stats := c.GetStats()
	if stats.Misses != 1 {
		t.Errorf("stats.Misses = %d, want 1", stats.Misses)
	}
}

func TestCache_Delete(t *testing.T) {
	c, cleanup := setupCache(t)
	defer cleanup()

	ctx := context.Background()

	if err := c.Set(ctx, "item:1", testValue{Name: "widget"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Delete(ctx, "item:1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var got testValue
	found, err := c.Get(ctx, "item:1", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true after Delete()")
	}
}

func TestCache_DeletePattern(t *testing.T) {
	c, cleanup := setupCache(t)
	defer cleanup()

	ctx := context.Background()

	for _, key := range []string{"item:1", "item:2", "other:1"} {
		if err := c.Set(ctx, key, testValue{Name: key}); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
	}

	if err := c.DeletePattern(ctx, "item:*"); err != nil {
		t.Fatalf("DeletePattern() error = %v", err)
	}

	var got testValue
	if found, _ := c.Get(ctx, "item:1", &got); found {
		t.Error("item:1 survived DeletePattern")
	}
	if found, _ := c.Get(ctx, "item:2", &got); found {
		t.Error("item:2 survived DeletePattern")
	}
	if found, _ := c.Get(ctx, "other:1", &got); !found {
		t.Error("other:1 was deleted by DeletePattern")
	}
}

func TestCache_Stats(t *testing.T) {
	c, cleanup := setupCache(t)
	defer cleanup()

	ctx := context.Background()

	c.Set(ctx, "item:1", testValue{Name: "widget"})

	var got testValue
	c.Get(ctx, "item:1", &got) // hit
	c.Get(ctx, "missing", &got) // miss

	stats := c.GetStats()
	if stats.Hits != 1 {
		t.Errorf("stats.Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("stats.Misses = %d, want 1", stats.Misses)
	}
	if stats.Sets != 1 {
		t.Errorf("stats.Sets = %d, want 1", stats.Sets)
	}
	if stats.HitRate != 50 {
		t.Errorf("stats.HitRate = %v, want 50", stats.HitRate)
	}
}
