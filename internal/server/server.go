package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"farmScope/internal/model"
	"farmScope/internal/storage"
)

// AprRunner computes APR rows for a chain.
type AprRunner interface {
	Run(ctx context.Context, chain string) ([]model.PoolApr, error)
}

// NewRouter wires the HTTP surface. sink may be nil; when set every computed
// batch is also persisted.
func NewRouter(runner AprRunner, sink storage.Storage, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(Recover(logger))
	r.Use(Logger(logger))
	r.Use(Metrics())

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", Health())
	r.Get("/aprs/{chain}", Aprs(runner, sink, logger))

	return r
}

// Health reports liveness only; it does not touch the chain or the APIs.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// Aprs computes the APR map of the requested chain on every call.
func Aprs(runner AprRunner, sink storage.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chain := chi.URLParam(r, "chain")

		rows, err := runner.Run(r.Context(), chain)
		if err != nil {
			logger.Error("apr computation failed", zap.String("chain", chain), zap.Error(err))
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}

		if sink != nil && len(rows) > 0 {
			if err := sink.PutAprBatch(r.Context(), rows); err != nil {
				logger.Warn("persist aprs", zap.String("chain", chain), zap.Error(err))
			}
		}

		aprs := make(map[string]float64, len(rows))
		for _, row := range rows {
			aprs[row.PoolAddress] = row.APR
		}
		writeJSON(w, http.StatusOK, aprs)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
