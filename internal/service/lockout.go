package service

import (
	"context"
	"sync"
	"time"

	"bloodlink/internal/domain"
	"bloodlink/internal/store"
)

const (
	DefaultLockoutThreshold = 5
	DefaultLockoutWindow    = 5 * time.Minute

	lockoutKeyPrefix = "adminSecurity"
)

// Lockout throttles admin logins per client. After threshold consecutive
// failures the client is locked for window; the state lives in local storage
// whichever backend serves the collections.
type Lockout struct {
	local     *store.Local
	threshold int
	window    time.Duration
	options

	mu sync.Mutex
}

func NewLockout(local *store.Local, threshold int, window time.Duration, opts ...Option) *Lockout {
	if threshold <= 0 {
		threshold = DefaultLockoutThreshold
	}
	if window <= 0 {
		window = DefaultLockoutWindow
	}
	return &Lockout{local: local, threshold: threshold, window: window, options: buildOptions(opts)}
}

// Check returns a *domain.LockoutError while client is locked. An elapsed
// lock is cleared so counting starts over.
func (l *Lockout) Check(ctx context.Context, client string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state := l.load(ctx, client)
	if state.LockedAt(now) {
		return &domain.LockoutError{Until: state.UnlockTime(), Now: now}
	}
	if state.LockUntil > 0 {
		return l.save(ctx, client, domain.LockoutState{})
	}
	return nil
}

// RecordFailure counts a failed attempt and returns a *domain.LockoutError
// when it is the one that locks the client.
func (l *Lockout) RecordFailure(ctx context.Context, client string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state := l.load(ctx, client)
	state.Failed++
	var locked error
	if state.Failed >= l.threshold {
		state.LockUntil = now.Add(l.window).UnixMilli()
		locked = &domain.LockoutError{Until: state.UnlockTime(), Now: now}
	}
	if err := l.save(ctx, client, state); err != nil {
		return err
	}
	return locked
}

// Reset clears the failure counter after a successful login.
func (l *Lockout) Reset(ctx context.Context, client string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.save(ctx, client, domain.LockoutState{})
}

// State returns the stored state for client.
func (l *Lockout) State(ctx context.Context, client string) domain.LockoutState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx, client)
}

func (l *Lockout) load(ctx context.Context, client string) domain.LockoutState {
	var state domain.LockoutState
	if _, err := l.local.LoadValue(ctx, lockoutKey(client), &state); err != nil {
		l.logger.Warn().Err(err).Str("client", client).Msg("lockout: unreadable state, starting over")
		return domain.LockoutState{}
	}
	return state
}

func (l *Lockout) save(ctx context.Context, client string, state domain.LockoutState) error {
	if err := l.local.SaveValue(ctx, lockoutKey(client), state); err != nil {
		l.logger.Error().Err(err).Str("client", client).Msg("lockout: save state failed")
		return err
	}
	return nil
}

func lockoutKey(client string) string {
	if client == "" {
		return lockoutKeyPrefix
	}
	return lockoutKeyPrefix + ":" + client
}
