package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"puzzleETL/internal/model"
)

// SpillStore persists extraction buffers to numbered files so that a
// long address history does not have to fit in memory. Files are a
// durable but non-transactional staging area: a run interrupted after
// a spill leaves its files behind for Sweep to reclaim.
type SpillStore struct {
	dir    string
	logger *zap.Logger
}

// NewSpillStore builds a SpillStore rooted at dir.
func NewSpillStore(dir string, logger *zap.Logger) *SpillStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpillStore{dir: dir, logger: logger}
}

func (s *SpillStore) path(address string, index int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%d", address, index))
}

// Save writes one buffer as a JSON array under {address}_{index}.
func (s *SpillStore) Save(address string, index int, txs []model.RawTransaction) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create spill dir: %w", err)
	}

	data, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("marshal spill buffer: %w", err)
	}

	path := s.path(address, index)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write spill file: %w", err)
	}

	s.logger.Info("spilled extraction buffer",
		zap.String("file", path),
		zap.Int("count", len(txs)),
	)
	return nil
}

// Drain reconstructs a single oldest-first sequence from fileCount
// spill files. The source delivers pages newest-first, so each file's
// list is reversed and the files themselves are read from the highest
// index down to zero. Files are deleted after reading. A file that
// cannot be read is logged and its contents dropped; draining
// continues with the remaining files.
func (s *SpillStore) Drain(address string, fileCount int) []model.RawTransaction {
	var all []model.RawTransaction

	for i := fileCount - 1; i >= 0; i-- {
		path := s.path(address, i)

		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("spill file read failed, partial result dropped",
				zap.String("file", path),
				zap.Error(err),
			)
			continue
		}

		var txs []model.RawTransaction
		if err := json.Unmarshal(data, &txs); err != nil {
			s.logger.Warn("spill file decode failed, partial result dropped",
				zap.String("file", path),
				zap.Error(err),
			)
			continue
		}

		reverse(txs)
		all = append(all, txs...)

		if err := os.Remove(path); err != nil {
			s.logger.Warn("spill file cleanup failed",
				zap.String("file", path),
				zap.Error(err),
			)
		}
	}

	return all
}

// Sweep removes any spill files left behind for an address by an
// interrupted run. Returns the number of files removed.
func (s *SpillStore) Sweep(address string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, address+"_*"))
	if err != nil {
		return 0, fmt.Errorf("list spill files: %w", err)
	}

	removed := 0
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			s.logger.Warn("spill sweep failed for file",
				zap.String("file", path),
				zap.Error(err),
			)
			continue
		}
		removed++
	}
	return removed, nil
}

func reverse(txs []model.RawTransaction) {
	for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
		txs[i], txs[j] = txs[j], txs[i]
	}
}
