package model

import "time"

// PoolApr is one computed reward APR row.
type PoolApr struct {
	Chain       string    `json:"chain"`
	ChainID     uint64    `json:"chain_id"`
	PoolID      uint64    `json:"pool_id"`
	PoolAddress string    `json:"pool_address"`
	Token0      string    `json:"token0"`
	Token1      string    `json:"token1"`
	AllocPoint  string    `json:"alloc_point"`
	TVLUSD      string    `json:"tvl_usd"`
	APR         float64   `json:"apr"`
	ComputedAt  time.Time `json:"computed_at"`
}
