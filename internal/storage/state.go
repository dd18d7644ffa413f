package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStateStore keeps per-address extraction cursors in a local JSON
// file. It backs incremental runs that have no warehouse connection.
type FileStateStore struct {
	Path string
	mu   sync.Mutex
}

type stateRecord struct {
	LastProcessedID string `json:"last_processed_id"`
	UpdatedAt       string `json:"updated_at"`
}

// LoadState returns the last processed transaction id for an address.
func (s *FileStateStore) LoadState(_ context.Context, address string) (string, bool, error) {
	if s == nil || s.Path == "" {
		return "", false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return "", false, err
	}
	rec, ok := records[address]
	if !ok {
		return "", false, nil
	}
	return rec.LastProcessedID, true, nil
}

// SaveState upserts the cursor for an address. The file is replaced
// atomically so a crash mid-write cannot corrupt it.
func (s *FileStateStore) SaveState(_ context.Context, address, lastProcessedID string) error {
	if s == nil || s.Path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	records[address] = stateRecord{
		LastProcessedID: lastProcessedID,
		UpdatedAt:       time.Now().UTC().Format(time.RFC3339Nano),
	}

	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}

func (s *FileStateStore) read() (map[string]stateRecord, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]stateRecord{}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	records := map[string]stateRecord{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return records, nil
}
