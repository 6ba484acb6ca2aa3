package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"farmScope/internal/model"
)

// ErrInvalidRow is returned for rows that cannot be keyed by chain and pool.
var ErrInvalidRow = errors.New("invalid apr row")

// JsonlStorage appends APR snapshots to a JSONL file, one row per line.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutAprBatch appends a snapshot. The batch is checked before the file is
// touched, so a bad row leaves the file unchanged.
func (s *JsonlStorage) PutAprBatch(_ context.Context, rows []model.PoolApr) error {
	if len(rows) == 0 {
		return nil
	}
	for i, row := range rows {
		if err := validateRow(row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open apr snapshot: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	enc := json.NewEncoder(writer)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("write apr row %s: %w", row.PoolAddress, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush apr snapshot: %w", err)
	}

	return nil
}

func validateRow(row model.PoolApr) error {
	switch {
	case row.Chain == "":
		return fmt.Errorf("%w: empty chain", ErrInvalidRow)
	case row.PoolAddress == "":
		return fmt.Errorf("%w: empty pool address", ErrInvalidRow)
	case row.ComputedAt.IsZero():
		return fmt.Errorf("%w: pool %s has no computed_at", ErrInvalidRow, row.PoolAddress)
	}
	return nil
}
