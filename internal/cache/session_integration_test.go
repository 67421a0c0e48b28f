//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/todoapi/todoapi/internal/testutil"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	c, err := New(ctx, testutil.RequireEnv(t, "TEST_REDIS_URL"), ttl)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return c
}

func TestIntegrationSession_SetGetDelete(t *testing.T) {
	c := newTestCache(t, time.Minute)
	ctx := context.Background()

	got, err := c.GetSession(ctx, "token-a")
	if err != nil || got != nil {
		t.Fatalf("GetSession() before set = %+v, %v; want miss", got, err)
	}

	if err := c.SetSession(ctx, "token-a", &CachedSession{UserID: "u1", Email: "a@example.com"}); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}

	got, err = c.GetSession(ctx, "token-a")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got == nil || got.UserID != "u1" {
		t.Fatalf("GetSession() = %+v, want user u1", got)
	}

	if err := c.DeleteSession(ctx, "token-a"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}

	got, err = c.GetSession(ctx, "token-a")
	if err != nil || got != nil {
		t.Fatalf("GetSession() after delete = %+v, %v; want miss", got, err)
	}
}

func TestIntegrationSession_Expires(t *testing.T) {
	c := newTestCache(t, time.Second)
	ctx := context.Background()

	if err := c.SetSession(ctx, "token-b", &CachedSession{UserID: "u2"}); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}

	ttl, err := c.Client().TTL(ctx, sessionKey("token-b")).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Second {
		t.Errorf("TTL = %v, want (0, 1s]", ttl)
	}
}

func TestIntegrationSession_DeleteBlocksLateSet(t *testing.T) {
	c := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.DeleteSession(ctx, "token-c"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}

	// A resolve that read the store before the logout writes afterwards.
	if err := c.SetSession(ctx, "token-c", &CachedSession{UserID: "u3"}); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}

	got, err := c.GetSession(ctx, "token-c")
	if err != nil || got != nil {
		t.Fatalf("GetSession() after revoke = %+v, %v; want miss", got, err)
	}

	exists, err := c.Client().Exists(ctx, sessionKey("token-c")).Result()
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists != 0 {
		t.Error("SetSession wrote an entry for a revoked token")
	}

	ttl, err := c.Client().TTL(ctx, revokedKey("token-c")).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("revoked TTL = %v, want (0, 1m]", ttl)
	}
}
