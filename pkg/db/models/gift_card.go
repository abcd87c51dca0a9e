package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailware/tillpoint-backend/pkg/enums"
)

// GiftCard carries a stored-value balance.
// current_balance never exceeds initial_balance; every balance change appends
// a GiftCardTransaction carrying the before/after pair.
type GiftCard struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CardNumber     string                `gorm:"column:card_number;not null;unique"`
	Status         enums.GiftCardStatus  `gorm:"column:status;type:text;not null;default:'free'"`
	StatusBefore   *enums.GiftCardStatus `gorm:"column:status_before;type:text"`
	Denomination   decimal.Decimal       `gorm:"column:denomination;type:numeric(12,2);not null;default:0"`
	InitialBalance decimal.Decimal       `gorm:"column:initial_balance;type:numeric(12,2);not null;default:0"`
	CurrentBalance decimal.Decimal       `gorm:"column:current_balance;type:numeric(12,2);not null;default:0"`
	ExpiryDate     *time.Time            `gorm:"column:expiry_date"`
	CustomerID     *uuid.UUID            `gorm:"column:customer_id;type:uuid;index"`
	BranchID       *uuid.UUID            `gorm:"column:branch_id;type:uuid"`
	Transactions   []GiftCardTransaction `gorm:"foreignKey:GiftCardID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
