package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwebster45206/dinobot/pkg/user"
)

// MockStore is an in-memory UserStore for tests. Records round-trip
// through JSON on Save and Load so callers cannot share pointers with
// the store, matching how the real backends behave.
type MockStore struct {
	records   map[string][]byte
	pingError error
	saveError error
}

// Ensure MockStore implements UserStore interface
var _ UserStore = (*MockStore)(nil)

// NewMockStore creates a new mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		records: make(map[string][]byte),
	}
}

// SetPingError configures the mock to fail on ping with the given error.
func (m *MockStore) SetPingError(err error) {
	m.pingError = err
}

// SetSaveError configures the mock to fail every Save with the given
// error, for exercising write-failure propagation.
func (m *MockStore) SetSaveError(err error) {
	m.saveError = err
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.pingError
}

func (m *MockStore) Close() error {
	return nil
}

func (m *MockStore) Load(ctx context.Context, userID string) (*user.Record, error) {
	data, ok := m.records[userID]
	if !ok {
		return nil, nil
	}
	var rec user.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil
	}
	return &rec, nil
}

func (m *MockStore) Save(ctx context.Context, userID string, rec *user.Record) error {
	if m.saveError != nil {
		return m.saveError
	}
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal user record: %w", err)
	}
	m.records[userID] = data
	return nil
}

func (m *MockStore) Delete(ctx context.Context, userID string) error {
	delete(m.records, userID)
	return nil
}
