package storage

import (
	"context"

	"farmScope/internal/model"
)

// Storage defines a sink for computed APR rows.
type Storage interface {
	PutAprBatch(ctx context.Context, rows []model.PoolApr) error
}

// Multi fans a batch out to every sink in order, stopping at the first error.
type Multi []Storage

// PutAprBatch implements Storage.
func (m Multi) PutAprBatch(ctx context.Context, rows []model.PoolApr) error {
	for _, sink := range m {
		if err := sink.PutAprBatch(ctx, rows); err != nil {
			return err
		}
	}
	return nil
}
