package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"farmScope/internal/model"
)

func TestNewStoreRequiresDSN(t *testing.T) {
	if _, err := NewStore(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

// TestUpsertPoolAprs runs against a live database when FARMSCOPE_TEST_PG_DSN is set.
func TestUpsertPoolAprs(t *testing.T) {
	dsn := os.Getenv("FARMSCOPE_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("FARMSCOPE_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	row := model.PoolApr{
		Chain:       "base",
		ChainID:     8453,
		PoolID:      1,
		PoolAddress: "0xtest00000000000000000000000000000000001",
		Token0:      "0x4200000000000000000000000000000000000006",
		Token1:      "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913",
		AllocPoint:  "50",
		TVLUSD:      "3153600",
		APR:         1000,
		ComputedAt:  time.Now().UTC(),
	}
	if err := store.UpsertPoolAprs(ctx, []model.PoolApr{row}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	row.APR = 900
	row.ComputedAt = row.ComputedAt.Add(time.Minute)
	if err := store.PutAprBatch(ctx, []model.PoolApr{row}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var apr float64
	err = store.pool.QueryRow(ctx,
		`SELECT apr FROM pool_reward_apr WHERE chain_id=$1 AND pool_address=$2`,
		int64(row.ChainID), row.PoolAddress,
	).Scan(&apr)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if apr != 900 {
		t.Fatalf("apr not updated: %v", apr)
	}

	if _, err := store.pool.Exec(ctx, `DELETE FROM pool_reward_apr WHERE pool_address=$1`, row.PoolAddress); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}
