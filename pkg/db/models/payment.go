package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailware/tillpoint-backend/pkg/enums"
)

// Payment records one collected amount against a sale. A sale may carry many
// payments when credit is topped up over time.
type Payment struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID      uuid.UUID           `gorm:"column:sale_id;type:uuid;not null;index"`
	Method      enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Amount      decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Description *string             `gorm:"column:description"`
	ReceivedAt  time.Time           `gorm:"column:received_at;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}
