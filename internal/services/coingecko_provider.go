package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider fetches crypto spot prices in USD. The lower-cased
// asset symbol is used as the CoinGecko coin id, so tracked crypto assets
// are expected to use coin ids ("bitcoin", "ethereum") as symbols.
type CoinGeckoProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewCoinGeckoProvider(baseURL string, timeout time.Duration) *CoinGeckoProvider {
	if baseURL == "" {
		baseURL = coinGeckoBaseURL
	}
	return &CoinGeckoProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *CoinGeckoProvider) Name() string { return "coingecko" }

func (p *CoinGeckoProvider) FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	id := strings.ToLower(strings.TrimSpace(symbol))
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", p.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return decimal.Zero, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("coingecko status %d", resp.StatusCode)
	}

	var payload map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("coingecko decode: %w", err)
	}

	quote, ok := payload[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("coingecko: id %s not in response", id)
	}
	usd, ok := quote["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("coingecko: no usd price for %s", id)
	}
	return finiteQuote(usd)
}
