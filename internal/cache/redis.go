package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keys
const (
	SyncLockKey      = "club:sync:lock"
	TagSearchKeyFmt  = "shopify:tag:%s"
	TagSearchPattern = "shopify:tag:*"
)

var client *redis.Client

// ErrUnavailable is returned by lock helpers when Redis is not connected
var ErrUnavailable = errors.New("redis unavailable")

// Init initializes the Redis connection. On failure the client stays nil and
// every helper degrades to a no-op.
func Init(addr, password string, db int) error {
	if addr == "" {
		return errors.New("redis address not configured")
	}
	client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// SetClient installs an already configured client (tests, shared pools)
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the Redis client, nil when unavailable
func GetClient() *redis.Client {
	return client
}

// Close releases the connection
func Close() {
	if client != nil {
		client.Close()
		client = nil
	}
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}

// ============================================
// Distributed lock
// ============================================

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquireLock takes key for ttl. It returns the owner token on success and an
// empty token when another holder has it.
func AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if client == nil {
		return "", ErrUnavailable
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	ok, err := client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// ReleaseLock deletes key only if token still owns it
func ReleaseLock(ctx context.Context, key, token string) error {
	if client == nil {
		return ErrUnavailable
	}
	return releaseScript.Run(ctx, client, []string{key}, token).Err()
}

// IsLocked reports whether someone holds key
func IsLocked(ctx context.Context, key string) bool {
	if client == nil {
		return false
	}
	n, err := client.Exists(ctx, key).Result()
	return err == nil && n > 0
}

// ============================================
// Generic Cache Functions
// ============================================

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached caches data for ttl
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidatePattern deletes every key matching pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}
