package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dangtran89/finwatch/internal/db"
	"github.com/dangtran89/finwatch/internal/models"
	"github.com/dangtran89/finwatch/internal/repositories"
)

func newTestRepo(t *testing.T) repositories.AssetRepository {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database := &db.DB{DB: gdb}
	require.NoError(t, database.Migrate())
	return repositories.NewAssetRepository(database)
}

func mustCreateAsset(t *testing.T, repo repositories.AssetRepository, kind, symbol string) *models.Asset {
	t.Helper()
	asset := &models.Asset{Kind: kind, Symbol: symbol, Name: symbol}
	_, err := repo.GetOrCreate(context.Background(), asset)
	require.NoError(t, err)
	return asset
}

func historyCount(t *testing.T, repo repositories.AssetRepository, assetID uint) int {
	t.Helper()
	points, err := repo.History(context.Background(), assetID, 1000)
	require.NoError(t, err)
	return len(points)
}

func mustFloat(t *testing.T, d decimal.Decimal) float64 {
	t.Helper()
	f, _ := d.Float64()
	return f
}
