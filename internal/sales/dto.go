package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailware/tillpoint-backend/pkg/db/models"
	"github.com/retailware/tillpoint-backend/pkg/enums"
)

// SaleFilters describe the inputs supported by the sales list.
type SaleFilters struct {
	BranchID       *uuid.UUID
	CustomerID     *uuid.UUID
	Status         *enums.SaleStatus
	PaymentStatus  *enums.PaymentStatus
	DateFrom       *time.Time
	DateTo         *time.Time
	IncludeDeleted bool
}

// SaleList is one cursor page of sales.
type SaleList struct {
	Items      []models.Sale `json:"items"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

// AddPaymentInput captures a credit top-up against an existing sale.
type AddPaymentInput struct {
	Amount      decimal.Decimal
	Method      enums.PaymentMethod
	Description *string
}

// RestoreResult returns the restored sale plus the stock caveat: restoring
// does not take the items back out of inventory.
type RestoreResult struct {
	Sale         *models.Sale `json:"sale"`
	StockWarning string       `json:"stock_warning,omitempty"`
}
