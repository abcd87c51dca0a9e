package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailware/tillpoint-backend/pkg/enums"
)

// GiftCardTransaction is one immutable gift card ledger entry.
// For debiting types balance_after == balance_before - amount; for crediting
// types balance_after == balance_before + amount.
type GiftCardTransaction struct {
	ID            uuid.UUID                     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GiftCardID    uuid.UUID                     `gorm:"column:gift_card_id;type:uuid;not null;index"`
	SaleID        *uuid.UUID                    `gorm:"column:sale_id;type:uuid;index"`
	Type          enums.GiftCardTransactionType `gorm:"column:type;type:text;not null"`
	Amount        decimal.Decimal               `gorm:"column:amount;type:numeric(12,2);not null"`
	BalanceBefore decimal.Decimal               `gorm:"column:balance_before;type:numeric(12,2);not null"`
	BalanceAfter  decimal.Decimal               `gorm:"column:balance_after;type:numeric(12,2);not null"`
	Note          *string                       `gorm:"column:note"`
	CreatedAt     time.Time                     `gorm:"column:created_at;autoCreateTime"`
}
