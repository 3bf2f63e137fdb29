package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/dinobot/pkg/user"
)

// FileStore persists one JSON document per user under a data
// directory, filename = <user id>.json. This mirrors how the bot has
// always stored its users; RedisStore is the stricter substitute.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// Ensure FileStore implements UserStore interface
var _ UserStore = (*FileStore)(nil)

// NewFileStore creates the data directory if needed and returns a
// store rooted there.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if dir == "" {
		dir = "./userdata"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create user data directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (f *FileStore) path(userID string) (string, error) {
	if userID == "" || strings.ContainsAny(userID, `/\`) || userID == "." || userID == ".." {
		return "", fmt.Errorf("invalid user id %q", userID)
	}
	return filepath.Join(f.dir, userID+".json"), nil
}

// Ping verifies the data directory is still accessible.
func (f *FileStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(f.dir); err != nil {
		return fmt.Errorf("user data directory unavailable: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error {
	return nil
}

// Load reads a user record from disk. A missing or malformed file
// degrades to (nil, nil) so the caller initializes a fresh record.
func (f *FileStore) Load(ctx context.Context, userID string) (*user.Record, error) {
	path, err := f.path(userID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		f.logger.Warn("Failed to read user record, treating as absent", "user_id", userID, "error", err)
		return nil, nil
	}

	var rec user.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		f.logger.Warn("Malformed user record, treating as absent", "user_id", userID, "error", err)
		return nil, nil
	}
	return &rec, nil
}

// Save writes the full record, overwriting any existing document.
// Write failures propagate so a command can report them instead of
// claiming success.
func (f *FileStore) Save(ctx context.Context, userID string, rec *user.Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	path, err := f.path(userID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		f.logger.Error("Failed to write user record", "user_id", userID, "error", err)
		return fmt.Errorf("failed to write user record: %w", err)
	}
	return nil
}

// Delete removes a user's document. Deleting an absent record is not
// an error.
func (f *FileStore) Delete(ctx context.Context, userID string) error {
	path, err := f.path(userID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete user record: %w", err)
	}
	return nil
}
