package farm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"farmScope/internal/model"
)

// rewardScale is the combined fixed-point exponent of the raw reward rate
// (1e18 token decimals times a 1e12 precision factor).
const rewardScale = 18 + 12

// Caller is the on-chain read surface the reader depends on.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BatchCallContract(ctx context.Context, msgs []ethereum.CallMsg) ([][]byte, []error, error)
}

// Globals holds the contract-wide scalars.
type Globals struct {
	PoolCount          uint64
	TotalAllocPoint    *big.Int
	RewardPerSecondRaw *big.Int
}

// RewardPerSecond returns the emission in reward tokens per second.
func (g Globals) RewardPerSecond() decimal.Decimal {
	if g.RewardPerSecondRaw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(g.RewardPerSecondRaw, 0).Shift(-rewardScale)
}

// Reader reads reward-contract state through a Caller.
type Reader struct {
	caller   Caller
	target   common.Address
	contract abi.ABI
}

// NewReader binds a reader to a contract, failing if any required method is
// missing from the ABI.
func NewReader(caller Caller, target common.Address, contract abi.ABI) (*Reader, error) {
	if caller == nil {
		return nil, fmt.Errorf("caller is nil")
	}
	for _, name := range []string{MethodPoolLength, MethodTotalAllocPoint, MethodRewardPerSecond, MethodPoolInfo} {
		if _, ok := contract.Methods[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrAbiFunctionNotFound, name)
		}
	}
	return &Reader{
		caller:   caller,
		target:   target,
		contract: contract,
	}, nil
}

// ReadGlobals loads the pool count, total allocation weight and raw reward rate.
func (r *Reader) ReadGlobals(ctx context.Context) (Globals, error) {
	poolLength, err := r.callUint(ctx, MethodPoolLength)
	if err != nil {
		return Globals{}, err
	}
	if !poolLength.IsUint64() {
		return Globals{}, &RPCError{Method: MethodPoolLength, Err: fmt.Errorf("pool length overflow: %s", poolLength)}
	}

	totalAllocPoint, err := r.callUint(ctx, MethodTotalAllocPoint)
	if err != nil {
		return Globals{}, err
	}

	rewardPerSecond, err := r.callUint(ctx, MethodRewardPerSecond)
	if err != nil {
		return Globals{}, err
	}

	return Globals{
		PoolCount:          poolLength.Uint64(),
		TotalAllocPoint:    totalAllocPoint,
		RewardPerSecondRaw: rewardPerSecond,
	}, nil
}

// ReadPoolRecords loads poolInfo for every index in [1, poolCount] in one
// batch. Index 0 is not a live pool slot and is never requested.
func (r *Reader) ReadPoolRecords(ctx context.Context, poolCount uint64) ([]model.PoolRecord, error) {
	if poolCount == 0 {
		return nil, nil
	}

	msgs := make([]ethereum.CallMsg, 0, poolCount)
	for pid := uint64(1); pid <= poolCount; pid++ {
		data, err := r.contract.Pack(MethodPoolInfo, new(big.Int).SetUint64(pid))
		if err != nil {
			return nil, &RPCError{Method: MethodPoolInfo, PoolID: pid, Err: fmt.Errorf("pack: %w", err)}
		}
		msgs = append(msgs, ethereum.CallMsg{To: &r.target, Data: data})
	}

	results, errs, err := r.caller.BatchCallContract(ctx, msgs)
	if err != nil {
		return nil, &RPCError{Method: MethodPoolInfo, Err: err}
	}
	if len(results) != len(msgs) || len(errs) != len(msgs) {
		return nil, &RPCError{Method: MethodPoolInfo, Err: fmt.Errorf("batch returned %d results for %d calls", len(results), len(msgs))}
	}

	records := make([]model.PoolRecord, 0, len(msgs))
	for i := range msgs {
		pid := uint64(i + 1)
		if errs[i] != nil {
			return nil, &RPCError{Method: MethodPoolInfo, PoolID: pid, Err: errs[i]}
		}
		record, err := r.decodePoolInfo(pid, results[i])
		if err != nil {
			return nil, &RPCError{Method: MethodPoolInfo, PoolID: pid, Err: err}
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *Reader) decodePoolInfo(pid uint64, data []byte) (model.PoolRecord, error) {
	values, err := r.contract.Unpack(MethodPoolInfo, data)
	if err != nil {
		return model.PoolRecord{}, fmt.Errorf("unpack: %w", err)
	}
	if len(values) < 6 {
		return model.PoolRecord{}, fmt.Errorf("poolInfo return size %d", len(values))
	}

	allocPoint, err := asBigInt(values[0])
	if err != nil {
		return model.PoolRecord{}, fmt.Errorf("allocPoint: %w", err)
	}
	pool, err := asAddress(values[1])
	if err != nil {
		return model.PoolRecord{}, fmt.Errorf("v3Pool: %w", err)
	}
	token0, err := asAddress(values[2])
	if err != nil {
		return model.PoolRecord{}, fmt.Errorf("token0: %w", err)
	}
	token1, err := asAddress(values[3])
	if err != nil {
		return model.PoolRecord{}, fmt.Errorf("token1: %w", err)
	}
	fee, err := asBigInt(values[4])
	if err != nil {
		return model.PoolRecord{}, fmt.Errorf("fee: %w", err)
	}
	totalLiquidity, err := asBigInt(values[5])
	if err != nil {
		return model.PoolRecord{}, fmt.Errorf("totalLiquidity: %w", err)
	}

	return model.PoolRecord{
		PoolID:         pid,
		Pool:           pool,
		Token0:         token0,
		Token1:         token1,
		Fee:            uint32(fee.Uint64()),
		AllocPoint:     allocPoint,
		TotalLiquidity: totalLiquidity,
	}, nil
}

func (r *Reader) callUint(ctx context.Context, method string) (*big.Int, error) {
	data, err := r.contract.Pack(method)
	if err != nil {
		return nil, &RPCError{Method: method, Err: fmt.Errorf("pack: %w", err)}
	}
	msg := ethereum.CallMsg{To: &r.target, Data: data}
	resp, err := r.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, &RPCError{Method: method, Err: err}
	}
	values, err := r.contract.Unpack(method, resp)
	if err != nil {
		return nil, &RPCError{Method: method, Err: fmt.Errorf("unpack: %w", err)}
	}
	if len(values) != 1 {
		return nil, &RPCError{Method: method, Err: fmt.Errorf("return size %d", len(values))}
	}
	value, err := asBigInt(values[0])
	if err != nil {
		return nil, &RPCError{Method: method, Err: err}
	}
	return value, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}
