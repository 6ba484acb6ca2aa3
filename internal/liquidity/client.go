package liquidity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"farmScope/internal/model"
)

// DefaultBaseURL is the public farms API serving in-range liquidity.
const DefaultBaseURL = "https://farms-api.pancakeswap.com/v3"

// Client fetches the staked in-range token amounts of farm pools.
type Client struct {
	client  *http.Client
	baseURL string
	logger  *zap.Logger
}

// NewClient builds a Client. A nil httpClient gets a 30s timeout client.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		client:  httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type liquidityResponse struct {
	Formatted *model.LiquidityAmounts `json:"formatted"`
}

// Result is the outcome of one pool fetch; exactly one of Amounts or Err is meaningful.
type Result struct {
	Pool    string
	Amounts model.LiquidityAmounts
	Err     error
}

// FetchPool loads the in-range amounts of a single pool.
func (c *Client) FetchPool(ctx context.Context, chainID uint64, pool model.PoolRecord) (model.LiquidityAmounts, error) {
	url := fmt.Sprintf("%s/%d/liquidity/%s", c.baseURL, chainID, pool.Pool.Hex())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.LiquidityAmounts{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return model.LiquidityAmounts{}, fmt.Errorf("liquidity API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.LiquidityAmounts{}, fmt.Errorf("liquidity API status: %d", resp.StatusCode)
	}

	var body liquidityResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.LiquidityAmounts{}, fmt.Errorf("decode liquidity: %w", err)
	}
	if body.Formatted == nil {
		return model.LiquidityAmounts{}, fmt.Errorf("liquidity response missing formatted amounts")
	}
	return *body.Formatted, nil
}

// FetchAll requests every pool concurrently and waits for all of them. A
// failed pool never cancels the others; its error is kept in its Result.
func (c *Client) FetchAll(ctx context.Context, chainID uint64, pools []model.PoolRecord) []Result {
	results := make([]Result, len(pools))

	var g errgroup.Group
	for i, pool := range pools {
		i, pool := i, pool
		g.Go(func() error {
			key := pool.Key()
			amounts, err := c.FetchPool(ctx, chainID, pool)
			if err != nil {
				c.logger.Warn("liquidity fetch failed",
					zap.Uint64("chain_id", chainID),
					zap.String("pool", key),
					zap.Error(err),
				)
			}
			results[i] = Result{Pool: key, Amounts: amounts, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Amounts folds successful results into a pool-address keyed map.
func Amounts(results []Result) map[string]model.LiquidityAmounts {
	out := make(map[string]model.LiquidityAmounts, len(results))
	for _, result := range results {
		if result.Err != nil {
			continue
		}
		out[result.Pool] = result.Amounts
	}
	return out
}
