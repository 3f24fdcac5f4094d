package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Integration tests - they skip when Redis is not reachable.
const testRedisAddr = "localhost:6379"

func setupTestCache(t *testing.T, prefix string) *Cache {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: testRedisAddr,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	cleanupKeys(ctx, client, prefix+"*")
	t.Cleanup(func() {
		cleanupKeys(ctx, client, prefix+"*")
		client.Close()
	})

	return New(client, prefix, 30*time.Second)
}

// cleanupKeys removes all keys matching the pattern.
func cleanupKeys(ctx context.Context, client *redis.Client, pattern string) {
	var cursor uint64
	for {
		keys, nextCursor, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
}

func TestCache_SetAndGet(t *testing.T) {
	c := setupTestCache(t, "test:authz:")
	ctx := context.Background()

	if err := c.Set(ctx, "ws:ws-1:user-1", true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var allowed bool
	hit, err := c.Get(ctx, "ws:ws-1:user-1", &allowed)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Error("Get() hit = false, want true")
	}
	if !allowed {
		t.Error("cached value = false, want true")
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := setupTestCache(t, "test:authz:")

	var allowed bool
	hit, err := c.Get(context.Background(), "ws:missing:user-1", &allowed)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("Get() hit = true for a missing key")
	}
}

func TestCache_SetWithTTLExpiry(t *testing.T) {
	c := setupTestCache(t, "test:authz:")
	ctx := context.Background()

	if err := c.SetWithTTL(ctx, "ws:ws-1:user-2", true, 100*time.Millisecond); err != nil {
		t.Fatalf("SetWithTTL() error = %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	var allowed bool
	hit, err := c.Get(ctx, "ws:ws-1:user-2", &allowed)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("Get() hit = true after the TTL expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := setupTestCache(t, "test:authz:")
	ctx := context.Background()

	if err := c.Set(ctx, "ws:ws-1:user-3", false); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Delete(ctx, "ws:ws-1:user-3"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var allowed bool
	hit, err := c.Get(ctx, "ws:ws-1:user-3", &allowed)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("Get() hit = true after Delete")
	}
}

func TestCache_Stats(t *testing.T) {
	c := setupTestCache(t, "test:authz:")
	ctx := context.Background()

	if err := c.Set(ctx, "stat-key", true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var v bool
	if _, err := c.Get(ctx, "stat-key", &v); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := c.Get(ctx, "stat-miss", &v); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

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
	if stats.HitRate != 0.5 {
		t.Errorf("stats.HitRate = %v, want 0.5", stats.HitRate)
	}
}
