package credits

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/pkg/db/models"
	"github.com/retailware/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a credits repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, credit *models.CustomerCredit) error {
	return r.db.WithContext(ctx).Create(credit).Error
}

func (r *repository) FindBySaleID(ctx context.Context, saleID uuid.UUID) (*models.CustomerCredit, error) {
	var credit models.CustomerCredit
	err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).First(&credit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "credit record not found")
		}
		return nil, err
	}
	return &credit, nil
}

func (r *repository) UpdateRepayment(ctx context.Context, id uuid.UUID, remaining decimal.Decimal, status enums.CreditStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.CustomerCredit{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"remaining_amount": remaining,
			"status":           status,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "credit record not found")
	}
	return nil
}

func (r *repository) ListDueBefore(ctx context.Context, cutoff time.Time) ([]models.CustomerCredit, error) {
	var rows []models.CustomerCredit
	err := r.db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date < ?", cutoff).
		Where("overdue = ? AND status <> ?", false, enums.CreditStatusPaid).
		Order("due_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) MarkOverdue(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.CustomerCredit{}).
		Where("id IN ?", ids).
		Update("overdue", true)
	return res.RowsAffected, res.Error
}
