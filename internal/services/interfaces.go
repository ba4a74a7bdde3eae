package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/dangtran89/finwatch/internal/models"
)

// ErrRateLimited is returned by providers on HTTP 429. It signals global
// quota exhaustion, so the resolver stops trying siblings and synthesizes.
var ErrRateLimited = errors.New("provider rate limited")

// ErrNoPrice is returned when no provider could produce a usable price and
// no synthetic fallback applies (crypto assets).
var ErrNoPrice = errors.New("no price available")

// QuoteProvider fetches a spot price for a single symbol from one upstream
// source. Implementations fail independently and must bound their requests
// with a timeout.
type QuoteProvider interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// SymbolMatch is one result from a symbol search provider
type SymbolMatch struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Kind   string `json:"type"`
}

// SearchProvider looks up symbols by free-text query
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]SymbolMatch, error)
}

// PriceResolver resolves and persists the current price of an asset.
// Successful resolutions write through the asset repository; callers must
// not record the returned price again.
type PriceResolver interface {
	Resolve(ctx context.Context, asset *models.Asset) (decimal.Decimal, error)
}

// ValidationResult is the outcome of a symbol validation
type ValidationResult struct {
	Valid       bool
	DisplayName string
}

// SymbolValidator confirms a ticker is real before it is tracked. It never
// blocks on provider failure: errors degrade to a permissive result.
type SymbolValidator interface {
	Validate(ctx context.Context, symbol string) ValidationResult
}
