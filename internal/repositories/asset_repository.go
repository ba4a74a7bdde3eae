package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dangtran89/finwatch/internal/db"
	"github.com/dangtran89/finwatch/internal/models"
)

type assetRepository struct {
	db *db.DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(database *db.DB) AssetRepository {
	return &assetRepository{db: database}
}

// GetOrCreate finds an asset by symbol or creates it. Returns true when a
// new row was created.
func (r *assetRepository) GetOrCreate(ctx context.Context, asset *models.Asset) (bool, error) {
	if err := asset.Validate(); err != nil {
		return false, err
	}

	var existing models.Asset
	err := r.db.WithContext(ctx).First(&existing, "symbol = ?", asset.Symbol).Error
	if err == nil {
		*asset = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up asset: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(asset).Error; err != nil {
		return false, fmt.Errorf("failed to create asset: %w", err)
	}
	return true, nil
}

func (r *assetRepository) GetByID(ctx context.Context, id uint) (*models.Asset, error) {
	var asset models.Asset
	if err := r.db.WithContext(ctx).First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("asset not found: %d", id)
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &asset, nil
}

func (r *assetRepository) GetBySymbol(ctx context.Context, symbol string) (*models.Asset, error) {
	var asset models.Asset
	err := r.db.WithContext(ctx).First(&asset, "symbol = ?", models.NormalizeSymbol(symbol)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset by symbol: %w", err)
	}
	return &asset, nil
}

func (r *assetRepository) ListByKind(ctx context.Context, kind string) ([]*models.Asset, error) {
	var assets []*models.Asset
	if err := r.db.WithContext(ctx).Where("kind = ?", kind).Order("symbol").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

func (r *assetRepository) ListAll(ctx context.Context) ([]*models.Asset, error) {
	var assets []*models.Asset
	if err := r.db.WithContext(ctx).Order("symbol").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

// SearchStocks finds stock assets whose symbol contains the query.
func (r *assetRepository) SearchStocks(ctx context.Context, query string, limit int) ([]*models.Asset, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + strings.ToUpper(strings.TrimSpace(query)) + "%"
	var assets []*models.Asset
	err := r.db.WithContext(ctx).
		Where("kind = ? AND symbol LIKE ?", models.AssetKindStock, pattern).
		Order("symbol").Limit(limit).Find(&assets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search assets: %w", err)
	}
	return assets, nil
}

// Delete removes an asset and its price history.
func (r *assetRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_id = ?", id).Delete(&models.PricePoint{}).Error; err != nil {
			return fmt.Errorf("failed to delete price history: %w", err)
		}
		res := tx.Delete(&models.Asset{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete asset: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("asset not found: %d", id)
		}
		return nil
	})
}

// RecordPrice atomically updates the asset's current price and appends a
// PricePoint. The passed asset is updated in place on success.
func (r *assetRepository) RecordPrice(ctx context.Context, asset *models.Asset, price decimal.Decimal, source string) error {
	if !price.IsPositive() {
		return fmt.Errorf("refusing to record non-positive price %s for %s", price, asset.Symbol)
	}

	now := time.Now().UTC()
	point := &models.PricePoint{
		AssetID:   asset.ID,
		Price:     price,
		Source:    source,
		Timestamp: now,
	}
	if err := point.Validate(); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"current_price": price,
			"last_updated":  now,
		}
		if err := tx.Model(&models.Asset{}).Where("id = ?", asset.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update current price: %w", err)
		}
		if err := tx.Create(point).Error; err != nil {
			return fmt.Errorf("failed to append price point: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	asset.CurrentPrice = &price
	asset.LastUpdated = &now
	return nil
}

// LatestPrice returns the current price if set, else the most recent
// history point, else nil.
func (r *assetRepository) LatestPrice(ctx context.Context, asset *models.Asset) (*decimal.Decimal, error) {
	if asset.CurrentPrice != nil {
		return asset.CurrentPrice, nil
	}

	var point models.PricePoint
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", asset.ID).
		Order("timestamp DESC").Order("id DESC").
		First(&point).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read price history: %w", err)
	}
	return &point.Price, nil
}

// History returns the most recent limit points, newest first.
func (r *assetRepository) History(ctx context.Context, assetID uint, limit int) ([]*models.PricePoint, error) {
	if limit <= 0 {
		limit = 50
	}
	var points []*models.PricePoint
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("timestamp DESC").Order("id DESC").
		Limit(limit).Find(&points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read price history: %w", err)
	}
	return points, nil
}
