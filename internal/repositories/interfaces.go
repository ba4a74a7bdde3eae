package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dangtran89/finwatch/internal/models"
)

// AssetRepository defines persistence for assets and their price history.
// RecordPrice is the only write path for the price fields: it updates the
// asset's latest-value slot and appends a history point in one transaction.
type AssetRepository interface {
	GetOrCreate(ctx context.Context, asset *models.Asset) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Asset, error)
	GetBySymbol(ctx context.Context, symbol string) (*models.Asset, error)
	ListByKind(ctx context.Context, kind string) ([]*models.Asset, error)
	ListAll(ctx context.Context) ([]*models.Asset, error)
	SearchStocks(ctx context.Context, query string, limit int) ([]*models.Asset, error)
	Delete(ctx context.Context, id uint) error

	RecordPrice(ctx context.Context, asset *models.Asset, price decimal.Decimal, source string) error
	LatestPrice(ctx context.Context, asset *models.Asset) (*decimal.Decimal, error)
	History(ctx context.Context, assetID uint, limit int) ([]*models.PricePoint, error)
}
