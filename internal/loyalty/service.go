package loyalty

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/internal/customers"
	"github.com/retailware/tillpoint-backend/pkg/db/models"
	"github.com/retailware/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/pagination"
)

// Service owns point movements: every balance change goes through here so
// the ledger always carries a correct before/after pair.
type Service interface {
	// Redeem debits points inside the caller's transaction.
	Redeem(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, saleID *uuid.UUID, points int) error
	// Earn credits points inside the caller's transaction.
	Earn(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, saleID *uuid.UUID, points int) error
	History(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*TransactionList, error)
}

type service struct {
	repo      Repository
	customers customers.Repository
}

// NewService builds the loyalty ledger service.
func NewService(repo Repository, customerRepo customers.Repository) Service {
	return &service{repo: repo, customers: customerRepo}
}

func (s *service) Redeem(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, saleID *uuid.UUID, points int) error {
	return s.move(ctx, tx, customerID, saleID, enums.LoyaltyTxnRedeem, points)
}

func (s *service) Earn(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, saleID *uuid.UUID, points int) error {
	return s.move(ctx, tx, customerID, saleID, enums.LoyaltyTxnEarn, points)
}

func (s *service) move(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, saleID *uuid.UUID, kind enums.LoyaltyTransactionType, points int) error {
	if points <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "points must be positive")
	}

	customerRepo := s.customers.WithTx(tx)
	customer, err := customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return err
	}

	currentDelta, lifetimeDelta := points, points
	if kind == enums.LoyaltyTxnRedeem {
		currentDelta, lifetimeDelta = -points, 0
	}
	if err := customerRepo.AdjustPoints(ctx, customerID, currentDelta, lifetimeDelta); err != nil {
		return err
	}

	return s.repo.WithTx(tx).CreateTransaction(ctx, &models.LoyaltyTransaction{
		CustomerID:   customerID,
		SaleID:       saleID,
		Type:         kind,
		Points:       points,
		PointsBefore: customer.CurrentPoints,
		PointsAfter:  customer.CurrentPoints + currentDelta,
	})
}

func (s *service) History(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*TransactionList, error) {
	return s.repo.ListByCustomer(ctx, customerID, params)
}
