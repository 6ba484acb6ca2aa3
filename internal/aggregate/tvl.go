package aggregate

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"farmScope/internal/model"
)

const (
	DropMissingPrice  = "missing_price"
	DropInvalidAmount = "invalid_amount"
)

// Drop records a pool excluded from the TVL map.
type Drop struct {
	Pool   string
	Reason string
}

// ComputeTVL values the in-range liquidity of every pool in USD. Pools
// without a liquidity entry are skipped; pools missing a token price or with
// unparseable amounts are dropped and reported.
func ComputeTVL(
	pools []model.PoolRecord,
	liquidity map[string]model.LiquidityAmounts,
	prices map[string]model.TokenPrice,
	chain string,
	logger *zap.Logger,
) (map[string]decimal.Decimal, []Drop) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tvls := make(map[string]decimal.Decimal, len(liquidity))
	var drops []Drop
	for _, pool := range pools {
		key := pool.Key()
		amounts, ok := liquidity[key]
		if !ok {
			continue
		}

		price0, ok := lookupPrice(prices, model.PriceKey(chain, pool.Token0))
		if !ok {
			logger.Warn("missing token price", zap.String("pool", key), zap.String("token", model.AddressKey(pool.Token0)))
			drops = append(drops, Drop{Pool: key, Reason: DropMissingPrice})
			continue
		}
		price1, ok := lookupPrice(prices, model.PriceKey(chain, pool.Token1))
		if !ok {
			logger.Warn("missing token price", zap.String("pool", key), zap.String("token", model.AddressKey(pool.Token1)))
			drops = append(drops, Drop{Pool: key, Reason: DropMissingPrice})
			continue
		}

		tvl, err := valueAmounts(amounts, price0, price1)
		if err != nil {
			logger.Warn("invalid liquidity amount", zap.String("pool", key), zap.Error(err))
			drops = append(drops, Drop{Pool: key, Reason: DropInvalidAmount})
			continue
		}
		tvls[key] = tvl
	}
	return tvls, drops
}

func valueAmounts(amounts model.LiquidityAmounts, price0, price1 decimal.Decimal) (decimal.Decimal, error) {
	amount0, err := decimal.NewFromString(amounts.Token0)
	if err != nil {
		return decimal.Zero, fmt.Errorf("token0 amount %q: %w", amounts.Token0, err)
	}
	amount1, err := decimal.NewFromString(amounts.Token1)
	if err != nil {
		return decimal.Zero, fmt.Errorf("token1 amount %q: %w", amounts.Token1, err)
	}
	return amount0.Mul(price0).Add(amount1.Mul(price1)), nil
}

// lookupPrice treats zero, negative and non-finite prices as missing.
func lookupPrice(prices map[string]model.TokenPrice, key string) (decimal.Decimal, bool) {
	price, ok := prices[key]
	if !ok {
		return decimal.Zero, false
	}
	if math.IsNaN(price.Price) || math.IsInf(price.Price, 0) || price.Price <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(price.Price), true
}
