package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/internal/cart"
	"github.com/retailware/tillpoint-backend/internal/credits"
	"github.com/retailware/tillpoint-backend/internal/customers"
	"github.com/retailware/tillpoint-backend/internal/giftcards"
	"github.com/retailware/tillpoint-backend/internal/loyalty"
	"github.com/retailware/tillpoint-backend/internal/products"
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

// Service turns a cart plus chosen instruments into a completed, balanced
// sale. Every ledger mutation lands in one transaction: the gift card debit,
// the point movements, the credit record and the payment row all commit
// together or not at all.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
	Checkout(ctx context.Context, input CheckoutInput) (*models.Sale, error)
}

type service struct {
	tx        txRunner
	products  products.Repository
	customers customers.Repository
	cards     giftcards.Repository
	cardSvc   giftcards.Service
	loyalty   loyalty.Service
	credits   credits.Repository
	sales     sales.Repository
	rules     config.LoyaltyConfig
	logg      *logger.Logger
}

// NewService builds the settlement service.
func NewService(
	tx txRunner,
	productRepo products.Repository,
	customerRepo customers.Repository,
	cardRepo giftcards.Repository,
	cardSvc giftcards.Service,
	loyaltySvc loyalty.Service,
	creditRepo credits.Repository,
	saleRepo sales.Repository,
	rules config.LoyaltyConfig,
	logg *logger.Logger,
) Service {
	return &service{
		tx:        tx,
		products:  productRepo,
		customers: customerRepo,
		cards:     cardRepo,
		cardSvc:   cardSvc,
		loyalty:   loyaltySvc,
		credits:   creditRepo,
		sales:     saleRepo,
		rules:     rules,
		logg:      logg,
	}
}

func (s *service) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	basket, err := s.buildCart(ctx, s.products, input.Items, input.TaxAmount, input.DiscountAmount)
	if err != nil {
		return nil, err
	}
	return quoteFromCart(basket), nil
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*models.Sale, error) {
	if input.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale requires at least one item")
	}

	var sale *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.products.WithTx(tx)
		saleRepo := s.sales.WithTx(tx)

		basket, err := s.buildCart(ctx, productRepo, input.Items, input.TaxAmount, input.DiscountAmount)
		if err != nil {
			return err
		}
		totals := basket.Totals()

		var customer *models.Customer
		if input.CustomerID != nil {
			customer, err = s.customers.WithTx(tx).FindByID(ctx, *input.CustomerID)
			if err != nil {
				return err
			}
		}

		var card *models.GiftCard
		planInput := PlanInput{
			GrandTotal:     totals.GrandTotal,
			PaymentStatus:  input.PaymentStatus,
			PaidAmount:     input.PaidAmount,
			PointsToRedeem: input.PointsToRedeem,
			HasCustomer:    customer != nil,
		}
		if customer != nil {
			planInput.CustomerPoints = customer.CurrentPoints
		}
		if input.GiftCardNumber != nil {
			card, err = s.cards.WithTx(tx).FindByCardNumber(ctx, *input.GiftCardNumber)
			if err != nil {
				return err
			}
			planInput.Card = &CardSnapshot{
				Status:     card.Status,
				Balance:    card.CurrentBalance,
				ExpiryDate: card.ExpiryDate,
			}
		}

		plan, err := Allocate(planInput, s.rules, time.Now())
		if err != nil {
			return err
		}
		if plan.PaidAmount.IsPositive() && !input.PaymentMethod.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment method is required for the paid portion")
		}

		number, err := saleRepo.NextNumber(ctx)
		if err != nil {
			return err
		}

		earned := EarnedPoints(s.rules, plan.GrandTotal, plan.PointsDiscount, totals.DiscountAmount, customer != nil)

		sale = &models.Sale{
			Number:         number,
			BranchID:       input.BranchID,
			CustomerID:     input.CustomerID,
			Status:         enums.SaleStatusPending,
			PaymentStatus:  plan.PaymentStatus,
			Subtotal:       totals.Subtotal,
			TaxAmount:      totals.TaxAmount,
			DiscountAmount: totals.DiscountAmount,
			Total:          plan.GrandTotal,
			PaidAmount:     plan.PaidAmount,
			CreditAmount:   plan.CreditAmount,
			GiftCardAmount: plan.GiftCardAmount,
			PointsRedeemed: plan.PointsRedeemed,
			PointsDiscount: plan.PointsDiscount,
			PointsEarned:   earned,
			Items:          saleItems(basket.Lines()),
		}
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}

		for _, line := range basket.Lines() {
			if err := productRepo.DecrementStock(ctx, line.ProductID, line.Qty); err != nil {
				return err
			}
		}

		if plan.GiftCardAmount.IsPositive() {
			if err := s.cardSvc.RedeemForSale(ctx, tx, card, plan.GiftCardAmount, sale.ID); err != nil {
				return err
			}
		}

		if plan.PointsRedeemed > 0 {
			if err := s.loyalty.Redeem(ctx, tx, customer.ID, &sale.ID, plan.PointsRedeemed); err != nil {
				return err
			}
		}
		if earned > 0 {
			if err := s.loyalty.Earn(ctx, tx, customer.ID, &sale.ID, earned); err != nil {
				return err
			}
		}

		if plan.CreditAmount.IsPositive() {
			if err := s.credits.WithTx(tx).Create(ctx, &models.CustomerCredit{
				SaleID:          sale.ID,
				CustomerID:      customer.ID,
				Amount:          plan.CreditAmount,
				RemainingAmount: plan.CreditAmount,
				DueDate:         input.DueDate,
				Status:          enums.CreditStatusPending,
			}); err != nil {
				return err
			}
		}

		if plan.PaidAmount.IsPositive() {
			if err := saleRepo.CreatePayment(ctx, &models.Payment{
				SaleID:     sale.ID,
				Method:     input.PaymentMethod,
				Amount:     plan.PaidAmount,
				ReceivedAt: time.Now().UTC(),
			}); err != nil {
				return err
			}
		}

		// Promotion is the last step: the sale only leaves pending once
		// every ledger movement above has landed.
		if err := saleRepo.UpdateStatus(ctx, sale.ID, enums.SaleStatusCompleted); err != nil {
			return err
		}
		sale.Status = enums.SaleStatusCompleted

		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithSaleID(ctx, sale.ID.String())
	s.logg.Info(s.logg.WithField(logCtx, "sale_number", sale.Number), "sale settled")
	return sale, nil
}

// buildCart loads and validates every product, then aggregates the lines.
func (s *service) buildCart(ctx context.Context, productRepo products.Repository, items []CheckoutItem, tax, discount decimal.Decimal) (*cart.Cart, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	loaded, err := productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(loaded))
	for _, product := range loaded {
		byID[product.ID] = product
	}

	basket := cart.New()
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("product %s not found", item.ProductID))
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s is not for sale", product.SKU))
		}
		if err := basket.AddLine(cart.LineInput{
			ProductID:      product.ID,
			Name:           product.Name,
			Unit:           product.Unit,
			Qty:            item.Qty,
			UnitPrice:      product.Price,
			DiscountAmount: item.DiscountAmount,
			PerPackage:     item.PerPackage,
			PackagingSize:  product.PackagingSize,
		}); err != nil {
			return nil, err
		}
	}
	if err := basket.SetTax(tax); err != nil {
		return nil, err
	}
	if err := basket.SetDiscount(discount); err != nil {
		return nil, err
	}
	return basket, nil
}

func saleItems(lines []cart.Line) []models.SaleItem {
	items := make([]models.SaleItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.SaleItem{
			ProductID:      line.ProductID,
			Name:           line.Name,
			Unit:           line.Unit,
			Qty:            line.Qty,
			UnitPrice:      line.UnitPrice,
			DiscountAmount: line.DiscountAmount,
			Total:          line.Total(),
		})
	}
	return items
}

func quoteFromCart(basket *cart.Cart) *Quote {
	totals := basket.Totals()
	quote := &Quote{
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.TaxAmount,
		DiscountAmount: totals.DiscountAmount,
		GrandTotal:     totals.GrandTotal,
	}
	for _, line := range basket.Lines() {
		quote.Lines = append(quote.Lines, QuoteLine{
			ProductID:      line.ProductID,
			Name:           line.Name,
			Unit:           line.Unit,
			Qty:            line.Qty,
			UnitPrice:      line.UnitPrice,
			DiscountAmount: line.DiscountAmount,
			Total:          line.Total(),
		})
	}
	return quote
}
