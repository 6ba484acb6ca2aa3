package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"farmScope/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS pool_reward_apr (
    chain_id BIGINT NOT NULL,
    chain TEXT NOT NULL,
    pool_address TEXT NOT NULL,
    pool_id BIGINT NOT NULL,
    token0 TEXT NOT NULL,
    token1 TEXT NOT NULL,
    alloc_point NUMERIC NOT NULL,
    tvl_usd NUMERIC NOT NULL,
    apr DOUBLE PRECISION NOT NULL,
    computed_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (chain_id, pool_address)
);
`

// Store persists computed APR rows in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the APR table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaSQL)
	return err
}

// PutAprBatch implements storage.Storage.
func (s *Store) PutAprBatch(ctx context.Context, rows []model.PoolApr) error {
	return s.UpsertPoolAprs(ctx, rows)
}

// UpsertPoolAprs inserts or replaces the latest APR of each pool.
func (s *Store) UpsertPoolAprs(ctx context.Context, rows []model.PoolApr) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO pool_reward_apr (
				chain_id, chain, pool_address, pool_id, token0, token1,
				alloc_point, tvl_usd, apr, computed_at, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
			ON CONFLICT (chain_id, pool_address)
			DO UPDATE SET
				pool_id = EXCLUDED.pool_id,
				token0 = EXCLUDED.token0,
				token1 = EXCLUDED.token1,
				alloc_point = EXCLUDED.alloc_point,
				tvl_usd = EXCLUDED.tvl_usd,
				apr = EXCLUDED.apr,
				computed_at = EXCLUDED.computed_at,
				updated_at = now()
			WHERE pool_reward_apr.computed_at <= EXCLUDED.computed_at
		`,
			int64(row.ChainID),
			row.Chain,
			row.PoolAddress,
			int64(row.PoolID),
			row.Token0,
			row.Token1,
			row.AllocPoint,
			row.TVLUSD,
			row.APR,
			row.ComputedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert pool apr: %w", err)
		}
	}
	return nil
}
