package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dangtran89/finwatch/internal/models"
	"github.com/dangtran89/finwatch/internal/repositories"
)

type priceResolver struct {
	stockProviders []QuoteProvider
	cryptoProvider QuoteProvider
	repo           repositories.AssetRepository
	synthetic      *SyntheticPriceGenerator
	logger         *zap.Logger
}

// NewPriceResolver creates the resolver. stockProviders are tried in order;
// cryptoProvider is the single crypto source.
func NewPriceResolver(
	stockProviders []QuoteProvider,
	cryptoProvider QuoteProvider,
	repo repositories.AssetRepository,
	synthetic *SyntheticPriceGenerator,
	logger *zap.Logger,
) PriceResolver {
	return &priceResolver{
		stockProviders: stockProviders,
		cryptoProvider: cryptoProvider,
		repo:           repo,
		synthetic:      synthetic,
		logger:         logger,
	}
}

func (r *priceResolver) Resolve(ctx context.Context, asset *models.Asset) (decimal.Decimal, error) {
	switch asset.Kind {
	case models.AssetKindCrypto:
		return r.resolveCrypto(ctx, asset)
	default:
		return r.resolveStock(ctx, asset)
	}
}

// resolveStock walks the provider chain. A rate-limit response means the
// quota is exhausted globally, so siblings are skipped and the synthetic
// generator takes over; the same happens when the whole chain fails.
func (r *priceResolver) resolveStock(ctx context.Context, asset *models.Asset) (decimal.Decimal, error) {
	for _, provider := range r.stockProviders {
		price, err := provider.FetchQuote(ctx, asset.Symbol)
		if err == nil {
			if err := r.repo.RecordPrice(ctx, asset, price, provider.Name()); err != nil {
				return decimal.Zero, fmt.Errorf("record price for %s: %w", asset.Symbol, err)
			}
			r.logger.Info("resolved price",
				zap.String("symbol", asset.Symbol),
				zap.String("provider", provider.Name()),
				zap.String("price", price.String()))
			return price, nil
		}
		if errors.Is(err, ErrRateLimited) {
			r.logger.Warn("provider rate limited, switching to synthetic prices",
				zap.String("symbol", asset.Symbol),
				zap.String("provider", provider.Name()))
			break
		}
		r.logger.Debug("provider failed, trying next",
			zap.String("symbol", asset.Symbol),
			zap.String("provider", provider.Name()),
			zap.Error(err))
	}

	return r.synthetic.Generate(ctx, asset)
}

// resolveCrypto uses the single crypto provider. There is no synthetic
// fallback for crypto assets.
func (r *priceResolver) resolveCrypto(ctx context.Context, asset *models.Asset) (decimal.Decimal, error) {
	if r.cryptoProvider == nil {
		return decimal.Zero, ErrNoPrice
	}

	price, err := r.cryptoProvider.FetchQuote(ctx, asset.Symbol)
	if err != nil {
		r.logger.Debug("crypto provider failed",
			zap.String("symbol", asset.Symbol),
			zap.Error(err))
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNoPrice, asset.Symbol)
	}

	if err := r.repo.RecordPrice(ctx, asset, price, r.cryptoProvider.Name()); err != nil {
		return decimal.Zero, fmt.Errorf("record price for %s: %w", asset.Symbol, err)
	}
	r.logger.Info("resolved price",
		zap.String("symbol", asset.Symbol),
		zap.String("provider", r.cryptoProvider.Name()),
		zap.String("price", price.String()))
	return price, nil
}
