package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"farmScope/internal/model"
)

// DefaultBaseURL is the DefiLlama coins API.
const DefaultBaseURL = "https://coins.llama.fi"

var (
	// ErrPriceServiceUnavailable is returned when the batched price request fails.
	ErrPriceServiceUnavailable = errors.New("price service unavailable")
	// ErrRewardPriceMissing is returned when the response lacks the reward token.
	ErrRewardPriceMissing = errors.New("reward token price missing")
)

// Quote is the result of one batched price request.
type Quote struct {
	RewardPrice decimal.Decimal
	Prices      map[string]model.TokenPrice
}

// Client resolves USD spot prices for "<chain>:<address>" tokens.
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

type pricesResponse struct {
	Coins map[string]model.TokenPrice `json:"coins"`
}

// FetchPrices prices the reward token on its own chain together with every
// distinct token on the target chain, in one request. Non-reward tokens may be
// absent from the returned map.
func (c *Client) FetchPrices(ctx context.Context, reward model.TokenRef, tokens []common.Address, chain string) (Quote, error) {
	ids := priceIDs(reward, tokens, chain)
	url := c.baseURL + "/prices/current/" + strings.Join(ids, ",")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: create request: %v", ErrPriceServiceUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrPriceServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("%w: status %d", ErrPriceServiceUnavailable, resp.StatusCode)
	}

	var body pricesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Quote{}, fmt.Errorf("%w: decode prices: %v", ErrPriceServiceUnavailable, err)
	}

	prices := make(map[string]model.TokenPrice, len(body.Coins))
	for key, price := range body.Coins {
		prices[strings.ToLower(key)] = price
	}

	rewardPrice, ok := prices[reward.Key()]
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s", ErrRewardPriceMissing, reward.Key())
	}

	c.logger.Debug("prices fetched",
		zap.Int("requested", len(ids)),
		zap.Int("resolved", len(prices)),
		zap.Float64("reward_price", rewardPrice.Price),
	)

	return Quote{
		RewardPrice: decimal.NewFromFloat(rewardPrice.Price),
		Prices:      prices,
	}, nil
}

// priceIDs returns the reward key followed by each distinct token key.
func priceIDs(reward model.TokenRef, tokens []common.Address, chain string) []string {
	ids := make([]string, 0, len(tokens)+1)
	seen := make(map[string]struct{}, len(tokens)+1)

	add := func(key string) {
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		ids = append(ids, key)
	}

	add(reward.Key())
	for _, token := range tokens {
		add(model.PriceKey(chain, token))
	}
	return ids
}
