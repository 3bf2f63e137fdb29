package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/dinobot/pkg/user"
)

// RedisStore implements UserStore against Redis. It keeps the same
// lenient read contract as FileStore but gives operators a backend
// that outlives the bot host's disk.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStore implements UserStore interface
var _ UserStore = (*RedisStore)(nil)

// NewRedisStore creates a new Redis-backed user store.
func NewRedisStore(redisURL string, logger *slog.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})
	return &RedisStore{client: rdb, logger: logger}
}

func userKey(userID string) string {
	return "user:" + userID
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStore) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Load retrieves a user record. Returns (nil, nil) for a missing key
// or an undecodable value, matching the FileStore contract.
func (r *RedisStore) Load(ctx context.Context, userID string) (*user.Record, error) {
	data, err := r.client.Get(ctx, userKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to load user record", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to load user record: %w", err)
	}

	var rec user.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		r.logger.Warn("Malformed user record, treating as absent", "user_id", userID, "error", err)
		return nil, nil
	}
	return &rec, nil
}

// Save stores the full record with no expiry.
func (r *RedisStore) Save(ctx context.Context, userID string, rec *user.Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("Failed to marshal user record", "user_id", userID, "error", err)
		return fmt.Errorf("failed to marshal user record: %w", err)
	}

	if err := r.client.Set(ctx, userKey(userID), string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save user record", "user_id", userID, "error", err)
		return fmt.Errorf("failed to save user record: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, userKey(userID)).Err(); err != nil {
		r.logger.Error("Failed to delete user record", "user_id", userID, "error", err)
		return fmt.Errorf("failed to delete user record: %w", err)
	}
	return nil
}
