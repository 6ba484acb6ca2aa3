// Package farmtest provides an in-memory reward contract for tests.
package farmtest

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"farmScope/internal/farm"
)

// Pool is one poolInfo slot served by Caller.
type Pool struct {
	AllocPoint     *big.Int
	V3Pool         common.Address
	Token0         common.Address
	Token1         common.Address
	Fee            uint32
	TotalLiquidity *big.Int
}

// Caller answers packed MasterChef v3 calls from in-memory state.
type Caller struct {
	PoolLength      *big.Int
	TotalAllocPoint *big.Int
	RewardPerSecond *big.Int
	Pools           map[uint64]Pool

	// CallErrs fails single calls by method name.
	CallErrs map[string]error
	// BatchErr fails the whole batch.
	BatchErr error
	// PoolErrs fails individual batch elements by pool id.
	PoolErrs map[uint64]error

	contract abi.ABI

	mu         sync.Mutex
	calls      []string
	requested  []uint64
	batchCount int
}

// NewCaller returns an empty contract backed by the MasterChef v3 ABI.
func NewCaller() (*Caller, error) {
	contract, err := farm.MasterChefV3ABI()
	if err != nil {
		return nil, err
	}
	return &Caller{
		PoolLength:      big.NewInt(0),
		TotalAllocPoint: big.NewInt(0),
		RewardPerSecond: big.NewInt(0),
		Pools:           make(map[uint64]Pool),
		CallErrs:        make(map[string]error),
		PoolErrs:        make(map[uint64]error),
		contract:        contract,
	}, nil
}

// Calls returns the single-call method names in order.
func (c *Caller) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// Requested returns the pool ids requested through batches.
func (c *Caller) Requested() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uint64(nil), c.requested...)
}

// BatchCount returns how many batches were sent.
func (c *Caller) BatchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batchCount
}

// CallContract implements farm.Caller.
func (c *Caller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	method, err := c.contract.MethodById(msg.Data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.calls = append(c.calls, method.Name)
	c.mu.Unlock()

	if err := c.CallErrs[method.Name]; err != nil {
		return nil, err
	}

	switch method.Name {
	case farm.MethodPoolLength:
		return method.Outputs.Pack(c.PoolLength)
	case farm.MethodTotalAllocPoint:
		return method.Outputs.Pack(c.TotalAllocPoint)
	case farm.MethodRewardPerSecond:
		return method.Outputs.Pack(c.RewardPerSecond)
	default:
		return nil, fmt.Errorf("unexpected call %s", method.Name)
	}
}

// BatchCallContract implements farm.Caller for poolInfo batches.
func (c *Caller) BatchCallContract(_ context.Context, msgs []ethereum.CallMsg) ([][]byte, []error, error) {
	c.mu.Lock()
	c.batchCount++
	c.mu.Unlock()

	if c.BatchErr != nil {
		return nil, nil, c.BatchErr
	}

	method := c.contract.Methods[farm.MethodPoolInfo]
	results := make([][]byte, len(msgs))
	errs := make([]error, len(msgs))
	for i, msg := range msgs {
		if len(msg.Data) < 4 || !bytes.Equal(msg.Data[:4], method.ID) {
			errs[i] = fmt.Errorf("unexpected selector")
			continue
		}
		args, err := method.Inputs.Unpack(msg.Data[4:])
		if err != nil {
			errs[i] = err
			continue
		}
		pid := args[0].(*big.Int).Uint64()

		c.mu.Lock()
		c.requested = append(c.requested, pid)
		c.mu.Unlock()

		if err := c.PoolErrs[pid]; err != nil {
			errs[i] = err
			continue
		}
		pool, ok := c.Pools[pid]
		if !ok {
			errs[i] = fmt.Errorf("pool %d not found", pid)
			continue
		}
		results[i], errs[i] = method.Outputs.Pack(
			orZero(pool.AllocPoint),
			pool.V3Pool,
			pool.Token0,
			pool.Token1,
			new(big.Int).SetUint64(uint64(pool.Fee)),
			orZero(pool.TotalLiquidity),
			big.NewInt(0),
		)
	}
	return results, errs, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
