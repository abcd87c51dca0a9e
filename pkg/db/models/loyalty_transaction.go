package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailware/tillpoint-backend/pkg/enums"
)

// LoyaltyTransaction is one immutable point movement for a customer.
type LoyaltyTransaction struct {
	ID           uuid.UUID                    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID   uuid.UUID                    `gorm:"column:customer_id;type:uuid;not null;index"`
	SaleID       *uuid.UUID                   `gorm:"column:sale_id;type:uuid;index"`
	Type         enums.LoyaltyTransactionType `gorm:"column:type;type:text;not null"`
	Points       int                          `gorm:"column:points;not null"`
	PointsBefore int                          `gorm:"column:points_before;not null"`
	PointsAfter  int                          `gorm:"column:points_after;not null"`
	CreatedAt    time.Time                    `gorm:"column:created_at;autoCreateTime"`
}
