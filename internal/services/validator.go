package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dangtran89/finwatch/internal/models"
	"github.com/dangtran89/finwatch/internal/repositories"
)

// knownStocks is the authoritative static symbol table. Hits here never
// touch the network.
var knownStocks = []SymbolMatch{
	{Symbol: "AAPL", Name: "Apple Inc.", Kind: "stock"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Kind: "stock"},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Kind: "stock"},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Kind: "stock"},
	{Symbol: "TSLA", Name: "Tesla, Inc.", Kind: "stock"},
	{Symbol: "META", Name: "Meta Platforms Inc.", Kind: "stock"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Kind: "stock"},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Kind: "stock"},
	{Symbol: "V", Name: "Visa Inc.", Kind: "stock"},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Kind: "stock"},
	{Symbol: "WMT", Name: "Walmart Inc.", Kind: "stock"},
	{Symbol: "PG", Name: "Procter & Gamble Co.", Kind: "stock"},
	{Symbol: "MA", Name: "Mastercard Inc.", Kind: "stock"},
	{Symbol: "UNH", Name: "UnitedHealth Group Inc.", Kind: "stock"},
	{Symbol: "HD", Name: "The Home Depot, Inc.", Kind: "stock"},
	{Symbol: "DIS", Name: "The Walt Disney Company", Kind: "stock"},
	{Symbol: "PYPL", Name: "PayPal Holdings, Inc.", Kind: "stock"},
	{Symbol: "BAC", Name: "Bank of America Corp.", Kind: "stock"},
	{Symbol: "NFLX", Name: "Netflix, Inc.", Kind: "stock"},
	{Symbol: "ADBE", Name: "Adobe Inc.", Kind: "stock"},
}

func knownStockName(symbol string) (string, bool) {
	for _, s := range knownStocks {
		if s.Symbol == symbol {
			return s.Name, true
		}
	}
	return "", false
}

type symbolValidator struct {
	repo   repositories.AssetRepository
	search SearchProvider
	logger *zap.Logger
}

// NewSymbolValidator creates the validator used on the add-asset path.
func NewSymbolValidator(repo repositories.AssetRepository, search SearchProvider, logger *zap.Logger) SymbolValidator {
	return &symbolValidator{repo: repo, search: search, logger: logger}
}

// Validate checks the static table, then existing asset rows, then the live
// search provider. Provider failures of any kind degrade to a permissive
// result: blocking a legitimate add is worse than tracking an odd symbol.
func (v *symbolValidator) Validate(ctx context.Context, symbol string) ValidationResult {
	normalized := models.NormalizeSymbol(symbol)

	if name, ok := knownStockName(normalized); ok {
		return ValidationResult{Valid: true, DisplayName: name}
	}

	if asset, err := v.repo.GetBySymbol(ctx, normalized); err == nil && asset != nil && asset.Kind == models.AssetKindStock {
		return ValidationResult{Valid: true, DisplayName: asset.Name}
	}

	matches, err := v.search.Search(ctx, symbol)
	if err != nil {
		v.logger.Warn("symbol search failed, allowing symbol",
			zap.String("symbol", normalized),
			zap.Error(err))
		return ValidationResult{Valid: true, DisplayName: symbol}
	}

	for _, m := range matches {
		if strings.EqualFold(m.Symbol, normalized) {
			return ValidationResult{Valid: true, DisplayName: m.Name}
		}
	}
	return ValidationResult{Valid: false}
}
