// Package storage persists the set of article identities seen in earlier runs.
package storage

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// DedupStore is the in-memory view of processed identities for one run.
// It is loaded once at start, mutated during the run and saved once at the end.
type DedupStore struct {
	ids         map[string]struct{}
	LastUpdated time.Time
}

// NewDedupStore returns an empty store.
func NewDedupStore() *DedupStore {
	return &DedupStore{ids: make(map[string]struct{})}
}

// Contains reports whether id was already processed.
func (s *DedupStore) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Add marks id as processed. In-memory only.
func (s *DedupStore) Add(id string) {
	s.ids[id] = struct{}{}
}

func (s *DedupStore) Len() int {
	return len(s.ids)
}

// IDs returns the identities sorted, so serialized state is stable.
func (s *DedupStore) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Backend loads and saves a DedupStore.
// Save stamps a fresh LastUpdated and overwrites the previous contents.
type Backend interface {
	Load(ctx context.Context) (*DedupStore, error)
	Save(ctx context.Context, s *DedupStore) error
}

// LoadOrEmpty loads the store from b. Any load error is logged and yields
// an empty store: a broken state file must never stop a run.
func LoadOrEmpty(ctx context.Context, b Backend, logger *slog.Logger) *DedupStore {
	s, err := b.Load(ctx)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("failed to load processed articles, starting empty", "error", err)
		return NewDedupStore()
	}
	if s == nil {
		return NewDedupStore()
	}
	return s
}
