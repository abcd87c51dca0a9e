package fiscal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a fiscal shift repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOpenShift(ctx context.Context, branchID uuid.UUID) (*models.FiscalShift, error) {
	var shift models.FiscalShift
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND closed_at IS NULL", branchID).
		Order("opened_at DESC").
		First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open shift for branch")
		}
		return nil, err
	}
	return &shift, nil
}

func (r *repository) Create(ctx context.Context, shift *models.FiscalShift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *repository) Close(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.FiscalShift{}).
		Where("id = ? AND closed_at IS NULL", id).
		Update("closed_at", time.Now().UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "shift is already closed")
	}
	return nil
}
