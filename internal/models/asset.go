package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Asset kinds
const (
	AssetKindStock  = "stock"
	AssetKindCrypto = "crypto"
)

// Asset represents a tracked financial instrument (stock ticker or crypto symbol)
type Asset struct {
	ID           uint             `json:"id" gorm:"primaryKey;column:id"`
	Kind         string           `json:"kind" gorm:"column:kind;type:varchar(10);not null;index"`
	Symbol       string           `json:"symbol" gorm:"column:symbol;type:varchar(20);not null;uniqueIndex"`
	Name         string           `json:"name" gorm:"column:name;type:varchar(200);not null"`
	CurrentPrice *decimal.Decimal `json:"current_price" gorm:"column:current_price;type:decimal(20,8)"`
	LastUpdated  *time.Time       `json:"last_updated" gorm:"column:last_updated"`
	CreatedAt    time.Time        `json:"created_at" gorm:"column:created_at;autoCreateTime"`

	Prices []PricePoint `json:"-" gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
}

// PricePoint is one immutable historical price observation for an asset
type PricePoint struct {
	ID        uint            `json:"id" gorm:"primaryKey;column:id"`
	AssetID   uint            `json:"asset_id" gorm:"column:asset_id;not null;index"`
	Price     decimal.Decimal `json:"price" gorm:"column:price;type:decimal(20,8);not null"`
	Source    string          `json:"source" gorm:"column:source;type:varchar(50);not null;default:''"`
	Timestamp time.Time       `json:"timestamp" gorm:"column:timestamp;autoCreateTime;index"`
}

// NormalizeSymbol upper-cases and trims a raw symbol for storage. Crypto
// symbols are lower-cased at provider lookup time, not here.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Validate validates the asset data
func (a *Asset) Validate() error {
	if a.Symbol == "" {
		return errors.New("symbol is required")
	}
	if a.Kind != AssetKindStock && a.Kind != AssetKindCrypto {
		return errors.New("kind must be stock or crypto")
	}
	if a.CurrentPrice != nil && !a.CurrentPrice.IsPositive() {
		return errors.New("current price must be positive when set")
	}
	return nil
}

// Validate validates the price point data
func (p *PricePoint) Validate() error {
	if p.AssetID == 0 {
		return errors.New("asset reference is required")
	}
	if !p.Price.IsPositive() {
		return errors.New("price must be positive")
	}
	return nil
}
