package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/typerace-go/internal/leaderboard"
)

// Store is an in-memory implementation of the leaderboard interface
type Store struct {
	mu      sync.RWMutex
	entries []leaderboard.Entry
}

// New creates a new in-memory leaderboard store
func New() *Store {
	return &Store{}
}

// Ensure Store implements the interface
var _ leaderboard.Store = (*Store)(nil)

func (s *Store) Record(ctx context.Context, e leaderboard.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *Store) Top(ctx context.Context, n int) ([]leaderboard.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := make([]leaderboard.Entry, len(s.entries))
	copy(sorted, s.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].WPM > sorted[j].WPM
	})

	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted, nil
}

func (s *Store) Size(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}
