package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/todoapi/todoapi/internal/auth"
)

const (
	// sessionCachePrefix is the Redis key prefix for resolved sessions.
	sessionCachePrefix = "session:"
	// revokedPrefix marks a logged-out token for one session TTL.
	revokedPrefix = "revoked:"
)

// CachedSession is what a verified token resolves to.
type CachedSession struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// sessionKey never stores the raw token in Redis.
func sessionKey(token string) string {
	return sessionCachePrefix + auth.QuickHash(token)
}

func revokedKey(token string) string {
	return revokedPrefix + auth.QuickHash(token)
}

// setSessionScript writes a session unless the token has been revoked.
var setSessionScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[2]) == 1 then
		return 0
	end
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
	return 1
`)

func encodeSession(s *CachedSession) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

func decodeSession(data []byte) (*CachedSession, bool) {
	var s CachedSession
	if err := json.Unmarshal(data, &s); err != nil || s.UserID == "" {
		return nil, false
	}
	return &s, true
}

// GetSession returns the cached session for token, or nil on a miss.
// A revoked token always misses.
func (c *Cache) GetSession(ctx context.Context, token string) (*CachedSession, error) {
	vals, err := c.client.MGet(ctx, sessionKey(token), revokedKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sessionFromValues(vals), nil
}

// sessionFromValues reads an MGET of the session and revoked keys.
func sessionFromValues(vals []interface{}) *CachedSession {
	if len(vals) != 2 || vals[1] != nil {
		return nil
	}
	data, ok := vals[0].(string)
	if !ok {
		return nil
	}

	s, ok := decodeSession([]byte(data))
	if !ok {
		// Corrupted entry - treat as miss
		return nil
	}
	return s
}

// SetSession caches the session for the configured TTL. It is a no-op
// once the token has been revoked.
func (c *Cache) SetSession(ctx context.Context, token string, s *CachedSession) error {
	data, err := encodeSession(s)
	if err != nil {
		return err
	}

	keys := []string{sessionKey(token), revokedKey(token)}
	if err := setSessionScript.Run(ctx, c.client, keys, data, c.sessionTTL.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// DeleteSession removes a cached session and marks the token revoked for
// one session TTL, so a resolve that raced the logout cannot re-cache it.
func (c *Cache) DeleteSession(ctx context.Context, token string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(token))
		pipe.Set(ctx, revokedKey(token), "1", c.sessionTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
