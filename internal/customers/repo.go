package customers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a customers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, err
	}
	return &customer, nil
}

// AdjustPoints applies both deltas in one statement guarded against the
// balance dropping below zero, so concurrent redemptions cannot overdraw.
func (r *repository) AdjustPoints(ctx context.Context, id uuid.UUID, currentDelta, lifetimeDelta int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ? AND current_points + ? >= 0", id, currentDelta).
		Updates(map[string]any{
			"current_points":  gorm.Expr("current_points + ?", currentDelta),
			"lifetime_points": gorm.Expr("lifetime_points + ?", lifetimeDelta),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient loyalty points")
	}
	return nil
}
