package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/pkg/db/models"
)

// Repository defines persistence operations for customer accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	// AdjustPoints moves the customer's point balances by the given deltas.
	// The current-points delta may be negative; lifetime only ever grows.
	AdjustPoints(ctx context.Context, id uuid.UUID, currentDelta, lifetimeDelta int) error
}
