package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"farmScope/internal/chain"
	"farmScope/internal/chains"
	"farmScope/internal/config"
	"farmScope/internal/farm"
	"farmScope/internal/liquidity"
	"farmScope/internal/pipeline"
	"farmScope/internal/prices"
	"farmScope/internal/storage"
	"farmScope/internal/storage/postgres"
)

func runApr(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	registry, err := chains.Default()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	callers := map[string]farm.Caller{}
	if chainCfg, err := registry.Lookup(cfg.Chain); err == nil {
		client, err := dialChain(ctx, chainCfg, cfg.RPC[chainCfg.Name])
		if err != nil {
			return err
		}
		defer client.Close()
		callers[chainCfg.Name] = client
	}

	sink, closeSink, err := openSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	p := newPipeline(cfg, registry, callers, logger)

	logger.Info("apr start",
		zap.String("chain", cfg.Chain),
		zap.String("liquidity_api", cfg.LiquidityAPI),
		zap.String("price_api", cfg.PriceAPI),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.String("out", cfg.Out),
	)

	rows, err := p.Run(ctx, cfg.Chain)
	if err != nil {
		return err
	}

	if sink != nil {
		if err := sink.PutAprBatch(ctx, rows); err != nil {
			return fmt.Errorf("persist aprs: %w", err)
		}
	}

	aprs := make(map[string]float64, len(rows))
	for _, row := range rows {
		aprs[row.PoolAddress] = row.APR
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(aprs)
}

func newPipeline(cfg config.Config, registry *chains.Registry, callers map[string]farm.Caller, logger *zap.Logger) *pipeline.Pipeline {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	return pipeline.New(
		registry,
		callers,
		liquidity.NewClient(cfg.LiquidityAPI, httpClient, logger),
		prices.NewClient(cfg.PriceAPI, httpClient, logger),
		logger,
	)
}

// dialChain connects to the chain RPC and checks it serves the expected chain id.
func dialChain(ctx context.Context, chainCfg chains.ChainConfig, rpcURL string) (*chain.Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url for chain %s is required", chainCfg.Name)
	}
	client, err := chain.NewClient(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	chainID, err := client.GetChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() || chainID.Uint64() != chainCfg.ID {
		client.Close()
		return nil, fmt.Errorf("rpc for %s serves chain id %s, want %d", chainCfg.Name, chainID, chainCfg.ID)
	}
	return client, nil
}

// openSinks returns the configured output sinks, or nil when none is set.
func openSinks(ctx context.Context, cfg config.Config) (storage.Storage, func(), error) {
	var sinks storage.Multi
	closeAll := func() {}

	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		closeAll = store.Close
		sinks = append(sinks, store)
	}

	if len(sinks) == 0 {
		return nil, closeAll, nil
	}
	return sinks, closeAll, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
