package ledger

import (
	"context"
	"sync"
)

// MemoryStore backs the ledger when no key-value store is configured.
// Records survive for the process lifetime only.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]ActivityRecord
	streaks map[string]StreakCounter
	values  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: map[string][]ActivityRecord{},
		streaks: map[string]StreakCounter{},
		values:  map[string]string{},
	}
}

func (s *MemoryStore) Append(_ context.Context, walletAddress string, rec ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[walletAddress] = append(s.records[walletAddress], rec)
	return nil
}

func (s *MemoryStore) List(_ context.Context, walletAddress string) ([]ActivityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ActivityRecord, len(s.records[walletAddress]))
	copy(out, s.records[walletAddress])
	return out, nil
}

func (s *MemoryStore) Streak(_ context.Context, walletAddress string) (StreakCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaks[walletAddress], nil
}

func (s *MemoryStore) SetStreak(_ context.Context, walletAddress string, streak StreakCounter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaks[walletAddress] = streak
	return nil
}

func (s *MemoryStore) GetValue(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *MemoryStore) SetValue(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
