package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// finiteQuote converts a raw provider float into a decimal, rejecting
// NaN, infinities and non-positive values.
func finiteQuote(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, fmt.Errorf("price is not a finite number")
	}
	if v <= 0 {
		return decimal.Zero, fmt.Errorf("price %v is not positive", v)
	}
	return decimal.NewFromFloat(v), nil
}

// YahooChartProvider fetches quotes from the Yahoo Finance chart endpoint.
// Two instances are used in the resolver chain, one per query host.
type YahooChartProvider struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

func NewYahooChartProvider(name, baseURL string, timeout time.Duration) *YahooChartProvider {
	return &YahooChartProvider{
		name:       name,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *YahooChartProvider) Name() string { return p.name }

func (p *YahooChartProvider) FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", p.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return decimal.Zero, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%s status %d", p.name, resp.StatusCode)
	}

	var payload struct {
		Chart struct {
			Result []struct {
				Meta struct {
					RegularMarketPrice *float64 `json:"regularMarketPrice"`
					PreviousClose      *float64 `json:"previousClose"`
					CurrentPrice       *float64 `json:"currentPrice"`
				} `json:"meta"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("%s decode: %w", p.name, err)
	}
	if len(payload.Chart.Result) == 0 {
		return decimal.Zero, fmt.Errorf("%s: empty chart result for %s", p.name, symbol)
	}

	meta := payload.Chart.Result[0].Meta
	for _, v := range []*float64{meta.RegularMarketPrice, meta.PreviousClose, meta.CurrentPrice} {
		if v != nil {
			return finiteQuote(*v)
		}
	}
	return decimal.Zero, fmt.Errorf("%s: no price in chart meta for %s", p.name, symbol)
}

// YahooQuoteSummaryProvider fetches quotes from the Yahoo Finance
// quoteSummary endpoint, where prices arrive as {raw, fmt} objects.
type YahooQuoteSummaryProvider struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

func NewYahooQuoteSummaryProvider(name, baseURL string, timeout time.Duration) *YahooQuoteSummaryProvider {
	return &YahooQuoteSummaryProvider{
		name:       name,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *YahooQuoteSummaryProvider) Name() string { return p.name }

func (p *YahooQuoteSummaryProvider) FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price", p.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return decimal.Zero, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%s status %d", p.name, resp.StatusCode)
	}

	var payload struct {
		QuoteSummary struct {
			Result []struct {
				Price struct {
					RegularMarketPrice struct {
						Raw *float64 `json:"raw"`
					} `json:"regularMarketPrice"`
					CurrentPrice struct {
						Raw *float64 `json:"raw"`
					} `json:"currentPrice"`
				} `json:"price"`
			} `json:"result"`
		} `json:"quoteSummary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("%s decode: %w", p.name, err)
	}
	if len(payload.QuoteSummary.Result) == 0 {
		return decimal.Zero, fmt.Errorf("%s: empty result for %s", p.name, symbol)
	}

	price := payload.QuoteSummary.Result[0].Price
	for _, v := range []*float64{price.RegularMarketPrice.Raw, price.CurrentPrice.Raw} {
		if v != nil {
			return finiteQuote(*v)
		}
	}
	return decimal.Zero, fmt.Errorf("%s: no price in summary for %s", p.name, symbol)
}
