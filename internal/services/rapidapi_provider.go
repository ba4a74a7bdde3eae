package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// RapidAPIProvider fetches quotes from the RapidAPI Yahoo Finance
// timeseries endpoint. The response shape is not contractually stable, so
// parsing runs an ordered list of pure parse functions and takes the first
// hit.
type RapidAPIProvider struct {
	host       string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewRapidAPIProvider(host, apiKey string, timeout time.Duration) *RapidAPIProvider {
	return &RapidAPIProvider{
		host:       host,
		apiKey:     apiKey,
		baseURL:    "https://" + host,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *RapidAPIProvider) Name() string { return "rapidapi-timeseries" }

func (p *RapidAPIProvider) FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/stock/v2/get-timeseries?symbol=%s&region=US", p.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("x-rapidapi-host", p.host)
	req.Header.Set("x-rapidapi-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return decimal.Zero, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rapidapi status %d", resp.StatusCode)
	}

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return decimal.Zero, fmt.Errorf("rapidapi decode: %w", err)
	}

	for _, parse := range timeseriesParsers {
		if v, ok := parse(data); ok {
			return finiteQuote(v)
		}
	}
	return decimal.Zero, fmt.Errorf("rapidapi: no price found for %s", symbol)
}

// quoteParser extracts a price from one known response shape
type quoteParser func(map[string]interface{}) (float64, bool)

// Known shapes, probed in order.
var timeseriesParsers = []quoteParser{
	parseTopLevelPrice("regularMarketPrice"),
	parseTopLevelPrice("currentPrice"),
	parseTimeseriesClose,
	parseQuoteSummaryPrice,
}

// parseTopLevelPrice handles price.<field> where the value is either a bare
// number or a {raw, fmt} object.
func parseTopLevelPrice(field string) quoteParser {
	return func(data map[string]interface{}) (float64, bool) {
		v, ok := dig(data, "price", field)
		if !ok {
			return 0, false
		}
		return asNumber(v)
	}
}

// parseTimeseriesClose handles
// timeseries.result[0].indicators.quote[0].close, an array of historical
// closes where the latest non-null entry wins.
func parseTimeseriesClose(data map[string]interface{}) (float64, bool) {
	v, ok := dig(data, "timeseries", "result")
	if !ok {
		return 0, false
	}
	first, ok := firstElement(v)
	if !ok {
		return 0, false
	}
	v, ok = dig(first, "indicators", "quote")
	if !ok {
		return 0, false
	}
	quote, ok := firstElement(v)
	if !ok {
		return 0, false
	}
	closes, ok := quote["close"].([]interface{})
	if !ok {
		return 0, false
	}
	for i := len(closes) - 1; i >= 0; i-- {
		if n, ok := asNumber(closes[i]); ok {
			return n, true
		}
	}
	return 0, false
}

// parseQuoteSummaryPrice handles quoteSummary.result[0].price embedded in
// the timeseries response.
func parseQuoteSummaryPrice(data map[string]interface{}) (float64, bool) {
	v, ok := dig(data, "quoteSummary", "result")
	if !ok {
		return 0, false
	}
	first, ok := firstElement(v)
	if !ok {
		return 0, false
	}
	price, ok := first["price"].(map[string]interface{})
	if !ok {
		return 0, false
	}
	for _, field := range []string{"regularMarketPrice", "currentPrice"} {
		if n, ok := asNumber(price[field]); ok {
			return n, true
		}
	}
	return 0, false
}

// dig walks nested JSON objects by key
func dig(data map[string]interface{}, keys ...string) (interface{}, bool) {
	var current interface{} = data
	for _, key := range keys {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// firstElement returns the first object of a JSON array
func firstElement(v interface{}) (map[string]interface{}, bool) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) == 0 {
		return nil, false
	}
	m, ok := arr[0].(map[string]interface{})
	return m, ok
}

// asNumber reads a bare JSON number or a {raw, fmt} price object
func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case map[string]interface{}:
		raw, ok := n["raw"].(float64)
		return raw, ok
	default:
		return 0, false
	}
}
