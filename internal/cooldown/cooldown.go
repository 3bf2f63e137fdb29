package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/jwebster45206/dinobot/internal/storage"
	"github.com/jwebster45206/dinobot/pkg/user"
)

// Ledger gates repeated use of a feature per user and per action.
// Expiries are stored in the user record as absolute epoch
// milliseconds, layered on the UserStore read-modify-write contract.
type Ledger struct {
	store storage.UserStore
	now   func() time.Time
}

// NewLedger creates a ledger backed by the given store.
func NewLedger(store storage.UserStore) *Ledger {
	return &Ledger{
		store: store,
		now:   time.Now,
	}
}

// WithClock overrides the ledger's clock.
// Returns the Ledger for method chaining.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// SetCooldown records that action may not run again for the given
// duration. A zero or negative duration writes an already-expired
// entry.
func (l *Ledger) SetCooldown(ctx context.Context, userID, action string, d time.Duration) error {
	rec, err := l.store.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user record: %w", err)
	}
	if rec == nil {
		rec = user.NewRecord()
	}
	rec.EnsureCooldowns()

	rec.Metadata.Cooldowns[action] = l.now().Add(d).UnixMilli()
	return l.store.Save(ctx, userID, rec)
}

// IsOnCooldown reports whether a stored expiry for action is still in
// the future. A missing record, cooldown map, or entry all mean "not
// on cooldown"; none of them is an error.
func (l *Ledger) IsOnCooldown(ctx context.Context, userID, action string) (bool, error) {
	expiry, err := l.expiry(ctx, userID, action)
	if err != nil {
		return false, err
	}
	return expiry > l.now().UnixMilli(), nil
}

// TimeRemaining returns how long until the action's cooldown expires,
// or zero when the action is not on cooldown.
func (l *Ledger) TimeRemaining(ctx context.Context, userID, action string) (time.Duration, error) {
	expiry, err := l.expiry(ctx, userID, action)
	if err != nil {
		return 0, err
	}
	remaining := time.Duration(expiry-l.now().UnixMilli()) * time.Millisecond
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// ResetAll clears every cooldown for a user. Admin bulk operation; a
// user with no record is a no-op.
func (l *Ledger) ResetAll(ctx context.Context, userID string) error {
	rec, err := l.store.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user record: %w", err)
	}
	if rec == nil {
		return nil
	}
	rec.Metadata.Cooldowns = make(map[string]int64)
	return l.store.Save(ctx, userID, rec)
}

func (l *Ledger) expiry(ctx context.Context, userID, action string) (int64, error) {
	rec, err := l.store.Load(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user record: %w", err)
	}
	if rec == nil || rec.Metadata.Cooldowns == nil {
		return 0, nil
	}
	return rec.Metadata.Cooldowns[action], nil
}
