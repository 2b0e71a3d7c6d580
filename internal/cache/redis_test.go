package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// setupTestCache starts an in-process Redis and wraps it in a RedisCache.
func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCacheFromClient(client), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "price:1", `{"avg":25}`, time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	val, err := c.Get(ctx, "price:1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if val != `{"avg":25}` {
		t.Errorf("Expected stored payload, got %q", val)
	}
}

func TestRedisCache_GetMissIsNotAnError(t *testing.T) {
	c, _ := setupTestCache(t)

	val, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get() on a miss failed: %v", err)
	}
	if val != "" {
		t.Errorf("Expected empty string on a miss, got %q", val)
	}
}

func TestRedisCache_Expiration(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "price:1", "cached", time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	val, err := c.Get(ctx, "price:1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if val != "" {
		t.Errorf("Expected expired key to miss, got %q", val)
	}
}

func TestRedisCache_DelAndExists(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "a", "1", time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := c.Set(ctx, "b", "2", time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	n, err := c.Exists(ctx, "a", "b", "c")
	if err != nil {
		t.Fatalf("Exists() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 existing keys, got %d", n)
	}

	if err := c.Del(ctx, "a", "b"); err != nil {
		t.Fatalf("Del() failed: %v", err)
	}

	n, err = c.Exists(ctx, "a", "b")
	if err != nil {
		t.Fatalf("Exists() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 keys after delete, got %d", n)
	}
}

func TestRedisCache_GetAfterServerGone(t *testing.T) {
	c, mr := setupTestCache(t)
	mr.Close()

	if _, err := c.Get(context.Background(), "any"); err == nil {
		t.Error("Expected an error with the server down")
	}
}
