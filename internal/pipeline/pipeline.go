package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"farmScope/internal/aggregate"
	"farmScope/internal/chains"
	"farmScope/internal/farm"
	"farmScope/internal/liquidity"
	"farmScope/internal/metrics"
	"farmScope/internal/model"
	"farmScope/internal/prices"
)

// DropLiquidityUnavailable labels active pools whose liquidity fetch failed.
const DropLiquidityUnavailable = "liquidity_unavailable"

// LiquiditySource fetches in-range amounts for a set of pools.
type LiquiditySource interface {
	FetchAll(ctx context.Context, chainID uint64, pools []model.PoolRecord) []liquidity.Result
}

// PriceSource resolves the reward price and the pool token prices.
type PriceSource interface {
	FetchPrices(ctx context.Context, reward model.TokenRef, tokens []common.Address, chain string) (prices.Quote, error)
}

// Pipeline computes per-pool reward APRs for one chain per call.
type Pipeline struct {
	registry  *chains.Registry
	callers   map[string]farm.Caller
	liquidity LiquiditySource
	prices    PriceSource
	logger    *zap.Logger
	now       func() time.Time
}

// New builds a Pipeline. callers maps chain names to their RPC caller.
func New(registry *chains.Registry, callers map[string]farm.Caller, liq LiquiditySource, px PriceSource, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]farm.Caller, len(callers))
	for name, caller := range callers {
		byName[strings.ToLower(name)] = caller
	}
	return &Pipeline{
		registry:  registry,
		callers:   byName,
		liquidity: liq,
		prices:    px,
		logger:    logger,
		now:       time.Now,
	}
}

// GetAprs returns the APR in percent keyed by lowercase pool address. An
// unsupported chain yields an empty map and no error.
func (p *Pipeline) GetAprs(ctx context.Context, chain string) (map[string]float64, error) {
	rows, err := p.Run(ctx, chain)
	if err != nil {
		return nil, err
	}
	aprs := make(map[string]float64, len(rows))
	for _, row := range rows {
		aprs[row.PoolAddress] = row.APR
	}
	return aprs, nil
}

// Run computes one PoolApr row per pool that passed the filter, fetched its
// liquidity and resolved both token prices. Only contract reads and the
// price service can fail the run.
func (p *Pipeline) Run(ctx context.Context, chain string) (rows []model.PoolApr, err error) {
	cfg, err := p.registry.Lookup(chain)
	if err != nil {
		if errors.Is(err, chains.ErrChainUnsupported) {
			p.logger.Info("chain unsupported", zap.String("chain", chain))
			return nil, nil
		}
		return nil, err
	}

	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.PipelineDuration.WithLabelValues(cfg.Name, status).Observe(time.Since(start).Seconds())
	}()

	caller, ok := p.callers[strings.ToLower(cfg.Name)]
	if !ok || caller == nil {
		return nil, fmt.Errorf("no rpc configured for chain %s", cfg.Name)
	}

	reader, err := farm.NewReader(caller, cfg.MasterChef, cfg.ABI)
	if err != nil {
		return nil, fmt.Errorf("init reader: %w", err)
	}

	globals, err := reader.ReadGlobals(ctx)
	if err != nil {
		return nil, fmt.Errorf("read globals: %w", err)
	}
	records, err := reader.ReadPoolRecords(ctx, globals.PoolCount)
	if err != nil {
		return nil, fmt.Errorf("read pools: %w", err)
	}

	active := aggregate.FilterActive(records)
	p.logger.Info("pools loaded",
		zap.String("chain", cfg.Name),
		zap.Uint64("pool_count", globals.PoolCount),
		zap.Int("active", len(active)),
	)

	results := p.liquidity.FetchAll(ctx, cfg.ID, active)
	for _, result := range results {
		if result.Err != nil {
			metrics.LiquidityFetchTotal.WithLabelValues(cfg.Name, "error").Inc()
			metrics.PoolDroppedTotal.WithLabelValues(cfg.Name, DropLiquidityUnavailable).Inc()
			continue
		}
		metrics.LiquidityFetchTotal.WithLabelValues(cfg.Name, "ok").Inc()
	}
	amounts := liquidity.Amounts(results)

	quote, err := p.prices.FetchPrices(ctx, cfg.RewardToken, aggregate.DistinctTokens(active), cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}

	tvls, drops := aggregate.ComputeTVL(active, amounts, quote.Prices, cfg.Name, p.logger)
	for _, drop := range drops {
		metrics.PoolDroppedTotal.WithLabelValues(cfg.Name, drop.Reason).Inc()
	}

	rewardPerSecond := globals.RewardPerSecond()
	totalAllocPoint := decimal.NewFromBigInt(globals.TotalAllocPoint, 0)
	computedAt := p.now().UTC()

	// pools that dropped out since the last run stop exporting an APR
	metrics.PoolAPR.DeletePartialMatch(prometheus.Labels{"chain": cfg.Name})

	rows = make([]model.PoolApr, 0, len(tvls))
	for _, pool := range active {
		key := pool.Key()
		tvl, ok := tvls[key]
		if !ok {
			continue
		}
		apr := aggregate.CalcAPR(
			rewardPerSecond,
			totalAllocPoint,
			decimal.NewFromBigInt(pool.AllocPoint, 0),
			quote.RewardPrice,
			decimal.NewNullDecimal(tvl),
		)
		metrics.PoolAPR.WithLabelValues(cfg.Name, key).Set(apr)

		rows = append(rows, model.PoolApr{
			Chain:       cfg.Name,
			ChainID:     cfg.ID,
			PoolID:      pool.PoolID,
			PoolAddress: key,
			Token0:      model.AddressKey(pool.Token0),
			Token1:      model.AddressKey(pool.Token1),
			AllocPoint:  pool.AllocPoint.String(),
			TVLUSD:      tvl.String(),
			APR:         apr,
			ComputedAt:  computedAt,
		})
	}

	p.logger.Info("aprs computed",
		zap.String("chain", cfg.Name),
		zap.Int("pools", len(rows)),
		zap.Int("dropped", len(active)-len(rows)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rows, nil
}
