package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/internal/credits"
	"github.com/retailware/tillpoint-backend/internal/products"
	"github.com/retailware/tillpoint-backend/pkg/db/models"
	"github.com/retailware/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/pagination"
)

// StockWarning is returned when a deleted sale comes back: the delete put
// the items back into inventory and the restore does not take them out again.
const StockWarning = "stock was returned on deletion and has not been re-deducted"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines sale lifecycle operations after settlement.
type Service interface {
	Detail(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, params pagination.Params, filters SaleFilters) (*SaleList, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) (*RestoreResult, error)
	AddPayment(ctx context.Context, id uuid.UUID, input AddPaymentInput) (*models.Sale, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	products products.Repository
	credits  credits.Service
}

// NewService builds the sale lifecycle service.
func NewService(repo Repository, tx txRunner, productRepo products.Repository, creditSvc credits.Service) Service {
	return &service{
		repo:     repo,
		tx:       tx,
		products: productRepo,
		credits:  creditSvc,
	}
}

func (s *service) Detail(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	return s.repo.FindByIDUnscoped(ctx, id)
}

func (s *service) List(ctx context.Context, params pagination.Params, filters SaleFilters) (*SaleList, error) {
	return s.repo.List(ctx, params, filters)
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if found.Status != enums.SaleStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending sales can be cancelled")
		}
		if err := repo.UpdateStatus(ctx, id, enums.SaleStatusCancelled); err != nil {
			return err
		}
		found.Status = enums.SaleStatusCancelled
		sale = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// Delete soft-deletes a completed sale and returns its items to stock.
// The sale row survives for audit and restore.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status != enums.SaleStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only completed sales can be deleted")
		}

		if !sale.StockRestored {
			productRepo := s.products.WithTx(tx)
			for _, item := range sale.Items {
				if err := productRepo.IncrementStock(ctx, item.ProductID, item.Qty); err != nil {
					return err
				}
			}
			if err := repo.Update(ctx, id, map[string]any{"stock_restored": true}); err != nil {
				return err
			}
		}

		return repo.SoftDelete(ctx, id)
	})
}

// Restore brings a soft-deleted sale back. Stock is deliberately not
// re-deducted; the caller surfaces StockWarning to the operator.
func (s *service) Restore(ctx context.Context, id uuid.UUID) (*RestoreResult, error) {
	var result *RestoreResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := repo.FindByIDUnscoped(ctx, id)
		if err != nil {
			return err
		}
		if !sale.DeletedAt.Valid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "sale is not deleted")
		}
		if err := repo.Restore(ctx, id); err != nil {
			return err
		}

		sale.DeletedAt = gorm.DeletedAt{}
		result = &RestoreResult{Sale: sale, StockWarning: StockWarning}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddPayment collects a top-up against the credit portion of a sale.
func (s *service) AddPayment(ctx context.Context, id uuid.UUID, input AddPaymentInput) (*models.Sale, error) {
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	var sale *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if found.Status != enums.SaleStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payments can only be added to completed sales")
		}
		if found.PaymentStatus == enums.PaymentStatusPaid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "sale is already fully paid")
		}

		credit, err := s.credits.ApplyPayment(ctx, tx, id, input.Amount)
		if err != nil {
			return err
		}

		paymentStatus := enums.PaymentStatusPartial
		if credit.Status == enums.CreditStatusPaid {
			paymentStatus = enums.PaymentStatusPaid
		}
		updates := map[string]any{
			"paid_amount":    found.PaidAmount.Add(input.Amount),
			"credit_amount":  credit.RemainingAmount,
			"payment_status": paymentStatus,
		}
		if err := repo.Update(ctx, id, updates); err != nil {
			return err
		}

		payment := &models.Payment{
			SaleID:      id,
			Method:      input.Method,
			Amount:      input.Amount,
			Description: input.Description,
			ReceivedAt:  time.Now().UTC(),
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return err
		}

		found.PaidAmount = found.PaidAmount.Add(input.Amount)
		found.CreditAmount = credit.RemainingAmount
		found.PaymentStatus = paymentStatus
		found.Payments = append(found.Payments, *payment)
		sale = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}
