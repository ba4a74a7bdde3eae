package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dangtran89/finwatch/internal/models"
	"github.com/dangtran89/finwatch/internal/repositories"
)

const syntheticSource = "synthetic"

// referencePrice anchors synthetic prices for well-known symbols
type referencePrice struct {
	Base  float64
	Range float64
}

// Approximate quote levels for popular tickers, used when no live provider
// is reachable.
var referencePrices = map[string]referencePrice{
	"AAPL":  {Base: 272.0, Range: 15.0},
	"MSFT":  {Base: 380.0, Range: 15.0},
	"GOOGL": {Base: 140.0, Range: 8.0},
	"AMZN":  {Base: 150.0, Range: 10.0},
	"TSLA":  {Base: 250.0, Range: 20.0},
	"META":  {Base: 350.0, Range: 15.0},
	"NVDA":  {Base: 500.0, Range: 30.0},
	"JPM":   {Base: 150.0, Range: 5.0},
	"V":     {Base: 250.0, Range: 10.0},
	"JNJ":   {Base: 160.0, Range: 5.0},
	"WMT":   {Base: 160.0, Range: 5.0},
	"PG":    {Base: 150.0, Range: 5.0},
	"MA":    {Base: 400.0, Range: 15.0},
	"UNH":   {Base: 500.0, Range: 20.0},
	"HD":    {Base: 350.0, Range: 10.0},
	"DIS":   {Base: 100.0, Range: 5.0},
	"PYPL":  {Base: 60.0, Range: 5.0},
	"BAC":   {Base: 35.0, Range: 2.0},
	"NFLX":  {Base: 450.0, Range: 20.0},
	"ADBE":  {Base: 550.0, Range: 25.0},
	"BTCS":  {Base: 1.5, Range: 0.3},
}

const (
	defaultBase  = 100.0
	defaultRange = 10.0
	minPrice     = 0.01
)

// SyntheticPriceGenerator produces a plausible price when no live data is
// available and records it exactly like a live resolution.
type SyntheticPriceGenerator struct {
	repo   repositories.AssetRepository
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSyntheticPriceGenerator(repo repositories.AssetRepository, logger *zap.Logger) *SyntheticPriceGenerator {
	return &SyntheticPriceGenerator{
		repo:   repo,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate synthesizes a price for the asset and writes it through the
// store. Price generation itself cannot fail; only the store write can.
func (g *SyntheticPriceGenerator) Generate(ctx context.Context, asset *models.Asset) (decimal.Decimal, error) {
	base, spread := g.anchorFor(asset)

	// uniform jitter within ±2% of the symbol's typical range
	jitter := g.uniform(-spread*0.02, spread*0.02)
	value := base + jitter
	if value < minPrice {
		value = minPrice
	}
	price := decimal.NewFromFloat(value).Round(8)

	if err := g.repo.RecordPrice(ctx, asset, price, syntheticSource); err != nil {
		return decimal.Zero, fmt.Errorf("record synthetic price for %s: %w", asset.Symbol, err)
	}

	g.logger.Info("generated synthetic price",
		zap.String("symbol", asset.Symbol),
		zap.String("price", price.String()))
	return price, nil
}

// anchorFor picks the base price and range: reference table first, then the
// asset's own last known price, then a fixed default.
func (g *SyntheticPriceGenerator) anchorFor(asset *models.Asset) (float64, float64) {
	if ref, ok := referencePrices[strings.ToUpper(asset.Symbol)]; ok {
		return ref.Base, ref.Range
	}
	if asset.CurrentPrice != nil && asset.CurrentPrice.IsPositive() {
		base, _ := asset.CurrentPrice.Float64()
		return base, base * 0.05
	}
	return defaultBase, defaultRange
}

func (g *SyntheticPriceGenerator) uniform(min, max float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return min + g.rng.Float64()*(max-min)
}
