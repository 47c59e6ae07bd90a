package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	throttleWindow = 15 * time.Minute
	throttleLimit  = 5
)

// LoginThrottle counts failed login attempts per username/address pair in
// Redis. Key format: login_fail:<username>:<addr>, expiring after the window.
type LoginThrottle struct {
	client *redis.Client
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
func NewLoginThrottle(client *redis.Client) *LoginThrottle {
	return &LoginThrottle{client: client}
}

// TooMany reports whether the pair has exhausted its failure budget.
func (t *LoginThrottle) TooMany(ctx context.Context, username, addr string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(username, addr)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n >= throttleLimit, nil
}

// Fail registers one more failed attempt; the expiry window restarts on
// every failure.
func (t *LoginThrottle) Fail(ctx context.Context, username, addr string) error {
	key := t.key(username, addr)
	if err := t.client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("throttle incr: %w", err)
	}
	return t.client.Expire(ctx, key, throttleWindow).Err()
}

// Clear resets the pair after a successful login.
func (t *LoginThrottle) Clear(ctx context.Context, username, addr string) error {
	return t.client.Del(ctx, t.key(username, addr)).Err()
}

func (t *LoginThrottle) key(username, addr string) string {
	return fmt.Sprintf("login_fail:%s:%s", username, addr)
}
