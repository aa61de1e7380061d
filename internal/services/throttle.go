package services

import (
	"context"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

const (
	DefaultLoginAttemptLimit = 5
	DefaultLoginAttemptTTL   = 600 * time.Second
)

// LoginThrottle counts failed logins per client address.
type LoginThrottle struct {
	store domain.AttemptStore
	limit int
	ttl   time.Duration
}

// NewLoginThrottle returns a throttle over store. Non-positive limit or ttl take the defaults.
func NewLoginThrottle(store domain.AttemptStore, limit int, ttl time.Duration) *LoginThrottle {
	if limit <= 0 {
		limit = DefaultLoginAttemptLimit
	}
	if ttl <= 0 {
		ttl = DefaultLoginAttemptTTL
	}
	return &LoginThrottle{store: store, limit: limit, ttl: ttl}
}

func attemptKey(clientAddr string) string {
	return "login-attempts:" + clientAddr
}

// Check returns ErrTooManyAttempts once the address reached the limit.
func (t *LoginThrottle) Check(ctx context.Context, clientAddr string) error {
	n, err := t.store.Get(ctx, attemptKey(clientAddr))
	if err != nil {
		return fmt.Errorf("read login attempts: %w", err)
	}
	if n >= t.limit {
		return domain.ErrTooManyAttempts
	}
	return nil
}

// Fail records one failed attempt and restarts the window.
func (t *LoginThrottle) Fail(ctx context.Context, clientAddr string) error {
	if _, err := t.store.Incr(ctx, attemptKey(clientAddr), t.ttl); err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, clientAddr string) error {
	if err := t.store.Reset(ctx, attemptKey(clientAddr)); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}
