package loyalty

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/pkg/db/models"
	"github.com/retailware/tillpoint-backend/pkg/pagination"
)

// Repository defines persistence operations for the loyalty ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTransaction(ctx context.Context, txn *models.LoyaltyTransaction) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*TransactionList, error)
}
