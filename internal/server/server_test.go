package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"farmScope/internal/model"
)

type stubRunner struct {
	rows  []model.PoolApr
	err   error
	chain string
}

func (s *stubRunner) Run(_ context.Context, chain string) ([]model.PoolApr, error) {
	s.chain = chain
	return s.rows, s.err
}

type stubSink struct {
	rows []model.PoolApr
	err  error
}

func (s *stubSink) PutAprBatch(_ context.Context, rows []model.PoolApr) error {
	s.rows = append(s.rows, rows...)
	return s.err
}

func TestHealth(t *testing.T) {
	router := NewRouter(&stubRunner{}, nil, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAprs(t *testing.T) {
	runner := &stubRunner{rows: []model.PoolApr{
		{PoolAddress: "0xaaaa", APR: 1000},
		{PoolAddress: "0xcccc", APR: 12.5},
	}}
	sink := &stubSink{err: errors.New("disk full")}
	router := NewRouter(runner, sink, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/aprs/BASE", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if runner.chain != "BASE" {
		t.Fatalf("chain param mismatch: %s", runner.chain)
	}

	var got map[string]float64
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got["0xaaaa"] != 1000 || got["0xcccc"] != 12.5 {
		t.Fatalf("unexpected aprs: %v", got)
	}
	if len(sink.rows) != 2 {
		t.Fatalf("expected rows persisted, got %d", len(sink.rows))
	}
}

func TestAprsEmpty(t *testing.T) {
	router := NewRouter(&stubRunner{}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/aprs/solana", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if strings.TrimSpace(rec.Body.String()) != "{}" {
		t.Fatalf("expected empty object, got %s", rec.Body.String())
	}
}

func TestAprsFatalError(t *testing.T) {
	router := NewRouter(&stubRunner{err: errors.New("rpc failure")}, nil, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/aprs/base", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	panicker := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	handler := Recover(zap.NewNop())(panicker)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := NewRouter(&stubRunner{}, nil, zap.NewNop())

	warm := httptest.NewRecorder()
	router.ServeHTTP(warm, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "farmscope_http_requests_total") {
		t.Fatalf("http metrics not exported")
	}
}
