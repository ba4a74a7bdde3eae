package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dangtran89/finwatch/internal/repositories"
)

const maxSearchResults = 10

// StockSearchService backs the stock auto-complete endpoint: live provider
// results first, with the static table and tracked assets as fallback when
// the provider is down or rate-limited.
type StockSearchService struct {
	provider SearchProvider
	repo     repositories.AssetRepository
	logger   *zap.Logger
}

func NewStockSearchService(provider SearchProvider, repo repositories.AssetRepository, logger *zap.Logger) *StockSearchService {
	return &StockSearchService{provider: provider, repo: repo, logger: logger}
}

func (s *StockSearchService) Search(ctx context.Context, query string) []SymbolMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SymbolMatch{}
	}

	if matches, err := s.provider.Search(ctx, query); err == nil && len(matches) > 0 {
		if len(matches) > maxSearchResults {
			matches = matches[:maxSearchResults]
		}
		return matches
	} else if err != nil {
		s.logger.Debug("live search failed, using fallback", zap.String("query", query), zap.Error(err))
	}

	return s.fallback(ctx, query)
}

// fallback merges static popular stocks with matching tracked assets,
// deduplicated by symbol.
func (s *StockSearchService) fallback(ctx context.Context, query string) []SymbolMatch {
	upper := strings.ToUpper(query)

	results := make([]SymbolMatch, 0, maxSearchResults)
	seen := make(map[string]bool)

	for _, stock := range knownStocks {
		if len(results) >= maxSearchResults {
			return results
		}
		if strings.Contains(stock.Symbol, upper) || strings.Contains(strings.ToUpper(stock.Name), upper) {
			seen[stock.Symbol] = true
			results = append(results, stock)
		}
	}

	assets, err := s.repo.SearchStocks(ctx, query, maxSearchResults)
	if err != nil {
		s.logger.Warn("asset search failed", zap.String("query", query), zap.Error(err))
		return results
	}
	for _, asset := range assets {
		if len(results) >= maxSearchResults {
			break
		}
		if seen[asset.Symbol] {
			continue
		}
		seen[asset.Symbol] = true
		results = append(results, SymbolMatch{Symbol: asset.Symbol, Name: asset.Name, Kind: "stock"})
	}
	return results
}
