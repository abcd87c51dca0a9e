package credits

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/pkg/db/models"
	"github.com/retailware/tillpoint-backend/pkg/enums"
)

// Repository defines persistence operations for the customer credit ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, credit *models.CustomerCredit) error
	FindBySaleID(ctx context.Context, saleID uuid.UUID) (*models.CustomerCredit, error)
	UpdateRepayment(ctx context.Context, id uuid.UUID, remaining decimal.Decimal, status enums.CreditStatus) error
	ListDueBefore(ctx context.Context, cutoff time.Time) ([]models.CustomerCredit, error)
	MarkOverdue(ctx context.Context, ids []uuid.UUID) (int64, error)
}
