// Package throttle limits repeated failed logins per email address.
package throttle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "login_failures:"

// LoginThrottle counts failed logins in Redis. A nil *LoginThrottle or one
// with maxAttempts <= 0 allows everything.
type LoginThrottle struct {
	client      redis.Cmdable
	maxAttempts int
	window      time.Duration
}

// New creates a LoginThrottle that blocks after maxAttempts failures within window.
func New(client redis.Cmdable, maxAttempts int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func (t *LoginThrottle) enabled() bool {
	return t != nil && t.client != nil && t.maxAttempts > 0
}

// Allow reports whether another login attempt for email may proceed.
func (t *LoginThrottle) Allow(ctx context.Context, email string) (bool, error) {
	if !t.enabled() {
		return true, nil
	}

	n, err := t.client.Get(ctx, key(email)).Int()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		return false, fmt.Errorf("redis get login failures: %w", err)
	}
	return n < t.maxAttempts, nil
}

// RecordFailure increments the failure counter for email. The window starts
// at the first failure.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) error {
	if !t.enabled() {
		return nil
	}

	k := key(email)
	n, err := t.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("redis incr login failures: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, k, t.window).Err(); err != nil {
			return fmt.Errorf("redis expire login failures: %w", err)
		}
	}
	return nil
}

// Reset clears the failure counter for email.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	if !t.enabled() {
		return nil
	}
	if err := t.client.Del(ctx, key(email)).Err(); err != nil {
		return fmt.Errorf("redis del login failures: %w", err)
	}
	return nil
}

func key(email string) string {
	sum := sha256.Sum256([]byte(email))
	return keyPrefix + hex.EncodeToString(sum[:])
}
