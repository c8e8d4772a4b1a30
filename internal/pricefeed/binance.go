package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.binance.com"

// Client fetches USD token prices from the Binance average-price endpoint.
// Stablecoins are pinned to 1 and WETH is quoted as ETH.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// NewClientWithBaseURL is used by tests to point at a stub server.
func NewClientWithBaseURL(baseURL string, logger *zap.Logger) *Client {
	c := NewClient(logger)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type avgPriceResponse struct {
	Mins  int    `json:"mins"`
	Price string `json:"price"`
}

// USDPrice returns the USD price of a token symbol as an exact rational.
func (c *Client) USDPrice(ctx context.Context, symbol string) (*big.Rat, error) {
	pair, fixed := normalizeSymbol(symbol)
	if fixed != nil {
		return fixed, nil
	}

	endpoint := fmt.Sprintf("%s/api/v3/avgPrice?symbol=%s", c.baseURL, url.QueryEscape(pair))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build price request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch price for %s: %w", pair, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("read price response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price feed returned %d for %s", resp.StatusCode, pair)
	}

	price, err := ParseAvgPrice(body)
	if err != nil {
		return nil, fmt.Errorf("parse price for %s: %w", pair, err)
	}

	c.logger.Debug("fetched usd price",
		zap.String("symbol", symbol),
		zap.String("pair", pair),
		zap.String("price", price.FloatString(6)))
	return price, nil
}

// ParseAvgPrice decodes a Binance avgPrice payload into an exact rational.
func ParseAvgPrice(body []byte) (*big.Rat, error) {
	var parsed avgPriceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode avg price: %w", err)
	}
	if parsed.Price == "" {
		return nil, fmt.Errorf("avg price missing from response")
	}
	price, ok := new(big.Rat).SetString(parsed.Price)
	if !ok {
		return nil, fmt.Errorf("invalid price %q", parsed.Price)
	}
	if price.Sign() <= 0 {
		return nil, fmt.Errorf("non-positive price %q", parsed.Price)
	}
	return price, nil
}

// normalizeSymbol maps a token symbol to its Binance USDT pair, or returns
// a fixed price when the token is itself a dollar stablecoin.
func normalizeSymbol(symbol string) (string, *big.Rat) {
	upper := strings.ToUpper(strings.TrimSpace(symbol))
	switch upper {
	case "USDT", "USDC":
		return "", big.NewRat(1, 1)
	case "WETH":
		upper = "ETH"
	}
	return upper + "USDT", nil
}
