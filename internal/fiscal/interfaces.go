package fiscal

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/pkg/db/models"
)

// Repository defines persistence operations for fiscal shifts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOpenShift(ctx context.Context, branchID uuid.UUID) (*models.FiscalShift, error)
	Create(ctx context.Context, shift *models.FiscalShift) error
	Close(ctx context.Context, id uuid.UUID) error
}
