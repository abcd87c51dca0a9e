package giftcards

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/pkg/db/models"
)

// Repository defines persistence operations for gift cards and their ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.GiftCard, error)
	FindByCardNumber(ctx context.Context, cardNumber string) (*models.GiftCard, error)
	Create(ctx context.Context, card *models.GiftCard) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	// DebitBalance subtracts amount only when the balance still equals
	// expectedBalance, so two concurrent redemptions cannot both pass.
	DebitBalance(ctx context.Context, id uuid.UUID, amount, expectedBalance decimal.Decimal) error
	CreditBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	CreateTransaction(ctx context.Context, txn *models.GiftCardTransaction) error
	ListTransactions(ctx context.Context, cardID uuid.UUID) ([]models.GiftCardTransaction, error)
	// ListExpired returns spendable cards whose expiry date has passed.
	ListExpired(ctx context.Context, cutoff time.Time) ([]models.GiftCard, error)
}
