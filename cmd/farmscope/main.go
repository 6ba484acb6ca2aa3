package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"farmScope/internal/liquidity"
	"farmScope/internal/prices"
)

func main() {
	root := &cobra.Command{
		Use:          "farmscope",
		Short:        "MasterChef v3 reward APR calculator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	aprCmd := &cobra.Command{
		Use:   "apr",
		Short: "Compute reward APRs for one chain",
		RunE:  runApr,
	}

	aprCmd.Flags().String("chain", "base", "chain name")
	aprCmd.Flags().String("rpc", "", "RPC URLs per chain (comma-separated chain=url)")
	aprCmd.Flags().String("liquidity-api", liquidity.DefaultBaseURL, "liquidity API base URL")
	aprCmd.Flags().String("price-api", prices.DefaultBaseURL, "price API base URL")
	aprCmd.Flags().Duration("http-timeout", 30*time.Second, "HTTP client timeout for off-chain APIs")
	aprCmd.Flags().String("out", "", "optional output JSONL path")
	aprCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	aprCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(aprCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve APRs, health and metrics over HTTP",
		RunE:  runServe,
	}

	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().String("rpc", "", "RPC URLs per chain (comma-separated chain=url)")
	serveCmd.Flags().String("liquidity-api", liquidity.DefaultBaseURL, "liquidity API base URL")
	serveCmd.Flags().String("price-api", prices.DefaultBaseURL, "price API base URL")
	serveCmd.Flags().Duration("http-timeout", 30*time.Second, "HTTP client timeout for off-chain APIs")
	serveCmd.Flags().String("out", "", "optional output JSONL path")
	serveCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
