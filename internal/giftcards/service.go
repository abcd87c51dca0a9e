package giftcards

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/internal/sales"
	"github.com/retailware/tillpoint-backend/pkg/config"
	"github.com/retailware/tillpoint-backend/pkg/db/models"
	"github.com/retailware/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type shiftGate interface {
	RequireOpenShift(ctx context.Context, branchID uuid.UUID) error
}

// Service owns the gift card lifecycle and its ledger.
type Service interface {
	Lookup(ctx context.Context, cardNumber string) (*CardSummary, error)
	Register(ctx context.Context, cardNumber string) (*models.GiftCard, error)
	Configure(ctx context.Context, input ConfigureInput) (*models.GiftCard, error)
	// Sell activates a configured card and records the purchase as a sale.
	// It is gated on an open fiscal shift for the branch.
	Sell(ctx context.Context, input SellInput) (*SellResult, error)
	Deactivate(ctx context.Context, cardNumber string) (*models.GiftCard, error)
	Reactivate(ctx context.Context, cardNumber string) (*models.GiftCard, error)
	// RedeemForSale debits the card inside the caller's settlement
	// transaction. expectedBalance is the balance read at plan time.
	RedeemForSale(ctx context.Context, tx *gorm.DB, card *models.GiftCard, amount decimal.Decimal, saleID uuid.UUID) error
	Transactions(ctx context.Context, cardNumber string) ([]models.GiftCardTransaction, error)
	// ExpireSweep drains and expires every spendable card past its expiry
	// date. Returns the number of cards expired.
	ExpireSweep(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo  Repository
	tx    txRunner
	sales sales.Repository
	shift shiftGate
	cfg   config.GiftCardConfig
	logg  *logger.Logger
}

// NewService builds the gift card service.
func NewService(repo Repository, tx txRunner, saleRepo sales.Repository, shift shiftGate, cfg config.GiftCardConfig, logg *logger.Logger) Service {
	return &service{
		repo:  repo,
		tx:    tx,
		sales: saleRepo,
		shift: shift,
		cfg:   cfg,
		logg:  logg,
	}
}

func (s *service) Lookup(ctx context.Context, cardNumber string) (*CardSummary, error) {
	card, err := s.findByNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}

	switch card.Status {
	case enums.GiftCardStatusConfigured, enums.GiftCardStatusActive:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("card %s is %s and cannot be used at the register", card.CardNumber, card.Status))
	}
	if card.ExpiryDate != nil && card.ExpiryDate.Before(time.Now()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("card %s expired on %s", card.CardNumber, card.ExpiryDate.Format("2006-01-02")))
	}
	return summarize(card), nil
}

func (s *service) Register(ctx context.Context, cardNumber string) (*models.GiftCard, error) {
	cardNumber = strings.TrimSpace(cardNumber)
	if cardNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card number is required")
	}
	card := &models.GiftCard{
		CardNumber: cardNumber,
		Status:     enums.GiftCardStatusFree,
	}
	if err := s.repo.Create(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *service) Configure(ctx context.Context, input ConfigureInput) (*models.GiftCard, error) {
	if !input.Denomination.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "denomination must be positive")
	}

	var card *models.GiftCard
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.FindByCardNumber(ctx, input.CardNumber)
		if err != nil {
			return err
		}
		if found.Status != enums.GiftCardStatusFree {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("card %s is %s, only free cards can be configured", found.CardNumber, found.Status))
		}

		updates := map[string]any{
			"status":       enums.GiftCardStatusConfigured,
			"denomination": input.Denomination,
		}
		if err := repo.Update(ctx, found.ID, updates); err != nil {
			return err
		}

		note := "denomination assigned"
		if err := repo.CreateTransaction(ctx, &models.GiftCardTransaction{
			GiftCardID:    found.ID,
			Type:          enums.GiftCardTxnIssue,
			Amount:        input.Denomination,
			BalanceBefore: decimal.Zero,
			BalanceAfter:  decimal.Zero,
			Note:          &note,
		}); err != nil {
			return err
		}

		found.Status = enums.GiftCardStatusConfigured
		found.Denomination = input.Denomination
		card = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *service) Sell(ctx context.Context, input SellInput) (*SellResult, error) {
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id is required")
	}
	if err := s.shift.RequireOpenShift(ctx, input.BranchID); err != nil {
		return nil, err
	}

	var result *SellResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		saleRepo := s.sales.WithTx(tx)

		card, err := repo.FindByCardNumber(ctx, input.CardNumber)
		if err != nil {
			return err
		}
		if !card.Status.IsSellable() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("card %s is %s, only configured cards can be sold", card.CardNumber, card.Status))
		}

		number, err := saleRepo.NextNumber(ctx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		sale := &models.Sale{
			Number:        number,
			BranchID:      input.BranchID,
			CustomerID:    input.CustomerID,
			Status:        enums.SaleStatusPending,
			PaymentStatus: enums.PaymentStatusPaid,
			Subtotal:      card.Denomination,
			Total:         card.Denomination,
			PaidAmount:    card.Denomination,
		}
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		if err := saleRepo.CreatePayment(ctx, &models.Payment{
			SaleID:     sale.ID,
			Method:     input.PaymentMethod,
			Amount:     card.Denomination,
			ReceivedAt: now,
		}); err != nil {
			return err
		}

		months := input.ExpiryMonths
		if months <= 0 {
			months = s.cfg.DefaultExpiryMonths
		}
		expiry := now.AddDate(0, months, 0)

		updates := map[string]any{
			"status":          enums.GiftCardStatusActive,
			"initial_balance": card.Denomination,
			"current_balance": card.Denomination,
			"expiry_date":     expiry,
			"branch_id":       input.BranchID,
		}
		if input.CustomerID != nil {
			updates["customer_id"] = *input.CustomerID
		}
		if err := repo.Update(ctx, card.ID, updates); err != nil {
			return err
		}

		if err := repo.CreateTransaction(ctx, &models.GiftCardTransaction{
			GiftCardID:    card.ID,
			SaleID:        &sale.ID,
			Type:          enums.GiftCardTxnActivate,
			Amount:        card.Denomination,
			BalanceBefore: decimal.Zero,
			BalanceAfter:  card.Denomination,
		}); err != nil {
			return err
		}

		// The sale only leaves pending once the card is activated.
		if err := saleRepo.UpdateStatus(ctx, sale.ID, enums.SaleStatusCompleted); err != nil {
			return err
		}
		sale.Status = enums.SaleStatusCompleted

		card.Status = enums.GiftCardStatusActive
		card.InitialBalance = card.Denomination
		card.CurrentBalance = card.Denomination
		card.ExpiryDate = &expiry
		card.BranchID = &input.BranchID
		card.CustomerID = input.CustomerID
		result = &SellResult{Sale: sale, Card: card}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithSaleID(ctx, result.Sale.ID.String()), "gift card sold and activated")
	return result, nil
}

func (s *service) Deactivate(ctx context.Context, cardNumber string) (*models.GiftCard, error) {
	card, err := s.findByNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}
	if card.Status == enums.GiftCardStatusInactive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "card is already inactive")
	}
	if card.Status.IsSpendTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("card is %s and cannot be deactivated", card.Status))
	}

	before := card.Status
	updates := map[string]any{
		"status":        enums.GiftCardStatusInactive,
		"status_before": before,
	}
	if err := s.repo.Update(ctx, card.ID, updates); err != nil {
		return nil, err
	}
	card.Status = enums.GiftCardStatusInactive
	card.StatusBefore = &before
	return card, nil
}

// Reactivate returns an inactive card to the status it held before
// deactivation.
func (s *service) Reactivate(ctx context.Context, cardNumber string) (*models.GiftCard, error) {
	card, err := s.findByNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}
	if card.Status != enums.GiftCardStatusInactive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only inactive cards can be reactivated")
	}

	restored := enums.GiftCardStatusActive
	if card.StatusBefore != nil {
		restored = *card.StatusBefore
	}
	updates := map[string]any{
		"status":        restored,
		"status_before": nil,
	}
	if err := s.repo.Update(ctx, card.ID, updates); err != nil {
		return nil, err
	}
	card.Status = restored
	card.StatusBefore = nil
	return card, nil
}

func (s *service) RedeemForSale(ctx context.Context, tx *gorm.DB, card *models.GiftCard, amount decimal.Decimal, saleID uuid.UUID) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "redeem amount must be positive")
	}
	if !card.Status.IsRedeemable() {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("card %s is %s, only active cards can be redeemed", card.CardNumber, card.Status))
	}

	repo := s.repo.WithTx(tx)
	if err := repo.DebitBalance(ctx, card.ID, amount, card.CurrentBalance); err != nil {
		return err
	}

	after := card.CurrentBalance.Sub(amount)
	if err := repo.CreateTransaction(ctx, &models.GiftCardTransaction{
		GiftCardID:    card.ID,
		SaleID:        &saleID,
		Type:          enums.GiftCardTxnRedeem,
		Amount:        amount,
		BalanceBefore: card.CurrentBalance,
		BalanceAfter:  after,
	}); err != nil {
		return err
	}

	if after.IsZero() {
		if err := repo.Update(ctx, card.ID, map[string]any{"status": enums.GiftCardStatusDepleted}); err != nil {
			return err
		}
		card.Status = enums.GiftCardStatusDepleted
	}
	card.CurrentBalance = after
	return nil
}

func (s *service) Transactions(ctx context.Context, cardNumber string) ([]models.GiftCardTransaction, error) {
	card, err := s.findByNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, card.ID)
}

func (s *service) ExpireSweep(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, card := range expired {
		card := card
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			if card.CurrentBalance.IsPositive() {
				if err := repo.DebitBalance(ctx, card.ID, card.CurrentBalance, card.CurrentBalance); err != nil {
					return err
				}
				if err := repo.CreateTransaction(ctx, &models.GiftCardTransaction{
					GiftCardID:    card.ID,
					Type:          enums.GiftCardTxnExpire,
					Amount:        card.CurrentBalance,
					BalanceBefore: card.CurrentBalance,
					BalanceAfter:  decimal.Zero,
				}); err != nil {
					return err
				}
			}

			return repo.Update(ctx, card.ID, map[string]any{
				"status":        enums.GiftCardStatusExpired,
				"status_before": card.Status,
			})
		})
		if err != nil {
			// Skip the contended card; the next sweep picks it up.
			s.logg.Warn(s.logg.WithField(ctx, "card_number", card.CardNumber), "gift card expiry failed")
			continue
		}
		count++
	}
	return count, nil
}

func (s *service) findByNumber(ctx context.Context, cardNumber string) (*models.GiftCard, error) {
	cardNumber = strings.TrimSpace(cardNumber)
	if cardNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card number is required")
	}
	return s.repo.FindByCardNumber(ctx, cardNumber)
}
