package prices

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"farmScope/internal/model"
)

var (
	cake = model.TokenRef{Chain: "bsc", Address: common.HexToAddress("0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82")}
	weth = common.HexToAddress("0x4200000000000000000000000000000000000006")
	usdc = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
)

func TestFetchPrices(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"coins":{
			"bsc:0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82":{"decimals":18,"symbol":"CAKE","price":2.5,"timestamp":1700000000,"confidence":0.99},
			"base:0x4200000000000000000000000000000000000006":{"decimals":18,"symbol":"WETH","price":3000.25,"timestamp":1700000000,"confidence":0.99}
		}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), zap.NewNop())
	quote, err := c.FetchPrices(context.Background(), cake, []common.Address{weth, usdc, weth}, "base")
	require.NoError(t, err)

	ids := strings.Split(strings.TrimPrefix(gotPath, "/prices/current/"), ",")
	assert.Equal(t, []string{
		"bsc:0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce82",
		"base:0x4200000000000000000000000000000000000006",
		"base:0x833589fcd6edb6e08f4c7c32d4f71b54bda02913",
	}, ids)

	assert.Equal(t, "2.5", quote.RewardPrice.String())
	assert.Equal(t, 3000.25, quote.Prices[model.PriceKey("base", weth)].Price)
	_, ok := quote.Prices[model.PriceKey("base", usdc)]
	assert.False(t, ok)
}

func TestFetchPricesRewardMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"coins":{"base:0x4200000000000000000000000000000000000006":{"price":3000}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	_, err := c.FetchPrices(context.Background(), cake, []common.Address{weth}, "base")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRewardPriceMissing))
}

func TestFetchPricesUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, srv.Client(), nil)
			_, err := c.FetchPrices(context.Background(), cake, []common.Address{weth}, "base")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPriceServiceUnavailable))
		})
	}
}

func TestFetchPricesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, nil, nil)
	_, err := c.FetchPrices(context.Background(), cake, nil, "base")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPriceServiceUnavailable))
}
