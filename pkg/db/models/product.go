package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailware/tillpoint-backend/pkg/enums"
)

// Product is a sellable item with tracked stock.
// PackagingSize is the number of base units one packaging unit contains;
// cart lines sold "per package" multiply through it.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU           string          `gorm:"column:sku;not null;unique"`
	Name          string          `gorm:"column:name;not null"`
	Unit          enums.Unit      `gorm:"column:unit;type:text;not null;default:'pcs'"`
	PackagingSize decimal.Decimal `gorm:"column:packaging_size;type:numeric(12,3);not null;default:1"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	StockQty      decimal.Decimal `gorm:"column:stock_qty;type:numeric(12,3);not null;default:0"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
