package credits

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/pkg/db/models"
	"github.com/retailware/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/types"
)

// Service mutates the credit ledger on behalf of sale-level operations.
type Service interface {
	// ApplyPayment reduces the remaining debt inside the caller's
	// transaction. Amounts above the remaining balance are rejected.
	ApplyPayment(ctx context.Context, tx *gorm.DB, saleID uuid.UUID, amount decimal.Decimal) (*models.CustomerCredit, error)
	// SweepOverdue flags unpaid credits whose due date has passed.
	SweepOverdue(ctx context.Context, now time.Time) (int64, error)
}

type service struct {
	repo Repository
}

// NewService builds the credit ledger service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ApplyPayment(ctx context.Context, tx *gorm.DB, saleID uuid.UUID, amount decimal.Decimal) (*models.CustomerCredit, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	repo := s.repo.WithTx(tx)
	credit, err := repo.FindBySaleID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	amount = types.RoundCurrency(amount)
	if amount.GreaterThan(credit.RemainingAmount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("payment of %s exceeds remaining balance of %s", amount, credit.RemainingAmount))
	}

	remaining := credit.RemainingAmount.Sub(amount)
	status := enums.CreditStatusPartial
	if remaining.IsZero() {
		status = enums.CreditStatusPaid
	}
	if err := repo.UpdateRepayment(ctx, credit.ID, remaining, status); err != nil {
		return nil, err
	}

	credit.RemainingAmount = remaining
	credit.Status = status
	return credit, nil
}

func (s *service) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	due, err := s.repo.ListDueBefore(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}
	ids := make([]uuid.UUID, 0, len(due))
	for _, credit := range due {
		ids = append(ids, credit.ID)
	}
	return s.repo.MarkOverdue(ctx, ids)
}
