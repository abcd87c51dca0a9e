package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailware/tillpoint-backend/pkg/enums"
)

// CustomerCredit tracks the deferred portion of a sale as customer debt.
// remaining_amount never exceeds amount; status is paid exactly when
// remaining_amount reaches zero.
type CustomerCredit struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID          uuid.UUID          `gorm:"column:sale_id;type:uuid;not null;unique"`
	CustomerID      uuid.UUID          `gorm:"column:customer_id;type:uuid;not null;index"`
	Amount          decimal.Decimal    `gorm:"column:amount;type:numeric(12,2);not null"`
	RemainingAmount decimal.Decimal    `gorm:"column:remaining_amount;type:numeric(12,2);not null"`
	DueDate         *time.Time         `gorm:"column:due_date"`
	Overdue         bool               `gorm:"column:overdue;not null;default:false"`
	Status          enums.CreditStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
