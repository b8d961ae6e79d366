package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// legacyTimeLayouts are accepted for last_updated in state files written
// without a zone offset.
var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// fileState is the on-disk JSON document.
type fileState struct {
	ProcessedIDs []string `json:"processed_ids"`
	LastUpdated  string   `json:"last_updated"`
}

// FileBackend keeps dedup state in a single JSON file.
type FileBackend struct {
	filePath string
	now      func() time.Time
}

// NewFileBackend creates a backend for filePath.
func NewFileBackend(filePath string) *FileBackend {
	return &FileBackend{filePath: filePath, now: time.Now}
}

// Path returns the state file location.
func (fb *FileBackend) Path() string {
	return fb.filePath
}

// Load reads the state file. A missing or empty file gives an empty store.
func (fb *FileBackend) Load(_ context.Context) (*DedupStore, error) {
	if _, err := os.Stat(fb.filePath); os.IsNotExist(err) {
		return NewDedupStore(), nil
	}

	data, err := os.ReadFile(fb.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read processed file: %w", err)
	}

	if len(data) == 0 {
		return NewDedupStore(), nil
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal processed file: %w", err)
	}

	s := NewDedupStore()
	for _, id := range state.ProcessedIDs {
		s.Add(id)
	}
	s.LastUpdated = parseLastUpdated(state.LastUpdated)
	return s, nil
}

// Save writes all identities and a fresh last_updated timestamp.
func (fb *FileBackend) Save(_ context.Context, s *DedupStore) error {
	s.LastUpdated = fb.now()

	state := fileState{
		ProcessedIDs: s.IDs(),
		LastUpdated:  s.LastUpdated.Format(time.RFC3339Nano),
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal processed file: %w", err)
	}

	if dir := filepath.Dir(fb.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state dir: %w", err)
		}
	}

	if err := os.WriteFile(fb.filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write processed file: %w", err)
	}

	return nil
}

func parseLastUpdated(v string) time.Time {
	for _, layout := range legacyTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
