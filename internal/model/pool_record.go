package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PoolRecord is a decoded poolInfo entry of the reward contract.
type PoolRecord struct {
	PoolID         uint64
	Pool           common.Address
	Token0         common.Address
	Token1         common.Address
	Fee            uint32
	AllocPoint     *big.Int
	TotalLiquidity *big.Int
}

// Key returns the lowercase pool address used to join off-chain data.
func (p PoolRecord) Key() string {
	return AddressKey(p.Pool)
}
