package giftcards

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

// NewRepository builds a gift card repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GiftCard, error) {
	var card models.GiftCard
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift card not found")
		}
		return nil, err
	}
	return &card, nil
}

func (r *repository) FindByCardNumber(ctx context.Context, cardNumber string) (*models.GiftCard, error) {
	var card models.GiftCard
	err := r.db.WithContext(ctx).Where("card_number = ?", cardNumber).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift card not found")
		}
		return nil, err
	}
	return &card, nil
}

func (r *repository) Create(ctx context.Context, card *models.GiftCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.GiftCard{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "gift card not found")
	}
	return nil
}

// DebitBalance is the optimistic-concurrency check at the heart of
// double-spend protection: the update only lands when the balance is still
// what the caller read at plan time.
func (r *repository) DebitBalance(ctx context.Context, id uuid.UUID, amount, expectedBalance decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.GiftCard{}).
		Where("id = ? AND current_balance = ?", id, expectedBalance).
		Update("current_balance", gorm.Expr("current_balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "gift card balance changed, retry the sale")
	}
	return nil
}

func (r *repository) CreditBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.GiftCard{}).
		Where("id = ? AND current_balance + ? <= initial_balance", id, amount).
		Update("current_balance", gorm.Expr("current_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "credit would exceed the card's initial balance")
	}
	return nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.GiftCardTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, cardID uuid.UUID) ([]models.GiftCardTransaction, error) {
	var rows []models.GiftCardTransaction
	err := r.db.WithContext(ctx).
		Where("gift_card_id = ?", cardID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListExpired(ctx context.Context, cutoff time.Time) ([]models.GiftCard, error) {
	var rows []models.GiftCard
	err := r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date < ?", cutoff).
		Where("status IN ?", []enums.GiftCardStatus{
			enums.GiftCardStatusConfigured,
			enums.GiftCardStatusActive,
		}).
		Order("expiry_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
