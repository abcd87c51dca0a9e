package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/pkg/enums"
)

// Sale is the finalized monetary record of a checkout.
//
// At completion the instrument amounts balance against the total:
// paid_amount + credit_amount + gift_card_amount == total, where the loyalty
// points discount has already been folded into total. Items and totals are
// immutable after creation; only payment_status and the linked ledgers mutate
// afterwards. Soft deletion keeps the row for audit and restore.
type Sale struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number         int64               `gorm:"column:number;not null;autoIncrement:false"`
	BranchID       uuid.UUID           `gorm:"column:branch_id;type:uuid;not null;index"`
	CustomerID     *uuid.UUID          `gorm:"column:customer_id;type:uuid;index"`
	Status         enums.SaleStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus  enums.PaymentStatus `gorm:"column:payment_status;type:text;not null"`
	Subtotal       decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxAmount      decimal.Decimal     `gorm:"column:tax_amount;type:numeric(12,2);not null;default:0"`
	DiscountAmount decimal.Decimal     `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	Total          decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	PaidAmount     decimal.Decimal     `gorm:"column:paid_amount;type:numeric(12,2);not null;default:0"`
	CreditAmount   decimal.Decimal     `gorm:"column:credit_amount;type:numeric(12,2);not null;default:0"`
	GiftCardAmount decimal.Decimal     `gorm:"column:gift_card_amount;type:numeric(12,2);not null;default:0"`
	PointsRedeemed int                 `gorm:"column:points_redeemed;not null;default:0"`
	PointsDiscount decimal.Decimal     `gorm:"column:points_discount;type:numeric(12,2);not null;default:0"`
	PointsEarned   int                 `gorm:"column:points_earned;not null;default:0"`
	StockRestored  bool                `gorm:"column:stock_restored;not null;default:false"`
	Items          []SaleItem          `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Payments       []Payment           `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt      gorm.DeletedAt      `gorm:"column:deleted_at;index"`
}
