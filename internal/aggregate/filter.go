package aggregate

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"farmScope/internal/model"
)

// FilterActive keeps pools with a nonzero allocation weight and nonzero
// staked liquidity, preserving order.
func FilterActive(records []model.PoolRecord) []model.PoolRecord {
	active := make([]model.PoolRecord, 0, len(records))
	for _, record := range records {
		if isZero(record.AllocPoint) || isZero(record.TotalLiquidity) {
			continue
		}
		active = append(active, record)
	}
	return active
}

// DistinctTokens returns token0 and token1 of every pool, deduplicated
// case-insensitively in first-seen order.
func DistinctTokens(pools []model.PoolRecord) []common.Address {
	seen := make(map[string]struct{}, len(pools)*2)
	tokens := make([]common.Address, 0, len(pools)*2)
	for _, pool := range pools {
		for _, token := range [2]common.Address{pool.Token0, pool.Token1} {
			key := model.AddressKey(token)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func isZero(value *big.Int) bool {
	return value == nil || value.Sign() == 0
}
