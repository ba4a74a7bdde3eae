package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// AutoCompleteProvider searches symbols via the RapidAPI Yahoo Finance
// auto-complete endpoint.
type AutoCompleteProvider struct {
	host       string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewAutoCompleteProvider(host, apiKey string, timeout time.Duration) *AutoCompleteProvider {
	return &AutoCompleteProvider{
		host:       host,
		apiKey:     apiKey,
		baseURL:    "https://" + host,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *AutoCompleteProvider) Search(ctx context.Context, query string) ([]SymbolMatch, error) {
	endpoint := fmt.Sprintf("%s/auto-complete?q=%s&region=US", p.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-rapidapi-host", p.host)
	req.Header.Set("x-rapidapi-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auto-complete status %d", resp.StatusCode)
	}

	// The endpoint has been seen returning two shapes: a quotes array and
	// a data array.
	var payload struct {
		Quotes []struct {
			Symbol    string `json:"symbol"`
			ShortName string `json:"shortname"`
			LongName  string `json:"longname"`
			QuoteType string `json:"quoteType"`
		} `json:"quotes"`
		Data []struct {
			Symbol    string `json:"symbol"`
			Name      string `json:"name"`
			ShortName string `json:"shortName"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("auto-complete decode: %w", err)
	}

	matches := make([]SymbolMatch, 0, len(payload.Quotes))
	for _, q := range payload.Quotes {
		if q.Symbol == "" {
			continue
		}
		quoteType := strings.ToLower(q.QuoteType)
		if quoteType != "equity" && quoteType != "stock" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		if name == "" {
			name = q.Symbol
		}
		matches = append(matches, SymbolMatch{Symbol: q.Symbol, Name: name, Kind: "stock"})
	}
	if len(matches) > 0 {
		return matches, nil
	}

	for _, d := range payload.Data {
		if d.Symbol == "" {
			continue
		}
		name := d.Name
		if name == "" {
			name = d.ShortName
		}
		if name == "" {
			name = d.Symbol
		}
		matches = append(matches, SymbolMatch{Symbol: d.Symbol, Name: name, Kind: "stock"})
	}
	return matches, nil
}
