package storage

import (
	"context"

	"github.com/jwebster45206/dinobot/pkg/user"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// UserStore defines the interface for user record persistence.
//
// Load returns (nil, nil) when no record exists for the id, and also
// when the stored document is unreadable or malformed: absent data is
// a defined outcome, not an error, so every caller's initialize-if-
// missing pattern keeps working. Save overwrites the whole document;
// there are no merge semantics and no locking, so concurrent writers
// to the same id race and the last write wins.
type UserStore interface {
	HealthChecker
	Closer

	// Load retrieves the record for a user id. Returns nil if absent.
	Load(ctx context.Context, userID string) (*user.Record, error)

	// Save serializes and stores the full record, overwriting any
	// existing document.
	Save(ctx context.Context, userID string, rec *user.Record) error

	// Delete removes the record for a user id.
	Delete(ctx context.Context, userID string) error
}
