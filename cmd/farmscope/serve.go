package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"farmScope/internal/chains"
	"farmScope/internal/config"
	"farmScope/internal/farm"
	"farmScope/internal/server"
)

func runServe(cmd *cobra.Command, _ []string) error {
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
	for name, rpcURL := range cfg.RPC {
		chainCfg, err := registry.Lookup(name)
		if err != nil {
			logger.Warn("skip rpc for unsupported chain", zap.String("chain", name))
			continue
		}
		client, err := dialChain(ctx, chainCfg, rpcURL)
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

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      server.NewRouter(p, sink, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server start",
			zap.String("listen", cfg.Listen),
			zap.Strings("chains", registry.Names()),
			zap.Int("rpc_endpoints", len(callers)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("server shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
