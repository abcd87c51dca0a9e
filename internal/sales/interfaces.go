package sales

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/pkg/db/models"
	"github.com/retailware/tillpoint-backend/pkg/enums"
	"github.com/retailware/tillpoint-backend/pkg/pagination"
)

// Repository defines persistence operations for sales and their payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, sale *models.Sale) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	// FindByIDUnscoped also returns soft-deleted sales.
	FindByIDUnscoped(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, params pagination.Params, filters SaleFilters) (*SaleList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SaleStatus) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
}
