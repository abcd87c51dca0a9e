package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/internal/credits"
	"github.com/retailware/tillpoint-backend/internal/customers"
	"github.com/retailware/tillpoint-backend/internal/giftcards"
	"github.com/retailware/tillpoint-backend/internal/loyalty"
	"github.com/retailware/tillpoint-backend/internal/products"
	"github.com/retailware/tillpoint-backend/internal/sales"
	"github.com/retailware/tillpoint-backend/pkg/db/models"
	"github.com/retailware/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/logger"
	"github.com/retailware/tillpoint-backend/pkg/pagination"
)

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProductRepo struct {
	products   []models.Product
	decrements map[uuid.UUID]decimal.Decimal
}

func (s *stubProductRepo) WithTx(tx *gorm.DB) products.Repository { return s }
func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}
func (s *stubProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return s.products, nil
}
func (s *stubProductRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error {
	if s.decrements == nil {
		s.decrements = map[uuid.UUID]decimal.Decimal{}
	}
	s.decrements[id] = s.decrements[id].Add(qty)
	return nil
}
func (s *stubProductRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error {
	return nil
}

type stubCustomerRepo struct {
	customer *models.Customer
}

func (s *stubCustomerRepo) WithTx(tx *gorm.DB) customers.Repository { return s }
func (s *stubCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if s.customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return s.customer, nil
}
func (s *stubCustomerRepo) AdjustPoints(ctx context.Context, id uuid.UUID, currentDelta, lifetimeDelta int) error {
	return nil
}

type stubCardRepo struct {
	card *models.GiftCard
}

func (s *stubCardRepo) WithTx(tx *gorm.DB) giftcards.Repository { return s }
func (s *stubCardRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.GiftCard, error) {
	return s.card, nil
}
func (s *stubCardRepo) FindByCardNumber(ctx context.Context, cardNumber string) (*models.GiftCard, error) {
	if s.card == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift card not found")
	}
	return s.card, nil
}
func (s *stubCardRepo) Create(ctx context.Context, card *models.GiftCard) error { return nil }
func (s *stubCardRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}
func (s *stubCardRepo) DebitBalance(ctx context.Context, id uuid.UUID, amount, expectedBalance decimal.Decimal) error {
	return nil
}
func (s *stubCardRepo) CreditBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return nil
}
func (s *stubCardRepo) CreateTransaction(ctx context.Context, txn *models.GiftCardTransaction) error {
	return nil
}
func (s *stubCardRepo) ListTransactions(ctx context.Context, cardID uuid.UUID) ([]models.GiftCardTransaction, error) {
	return nil, nil
}
func (s *stubCardRepo) ListExpired(ctx context.Context, cutoff time.Time) ([]models.GiftCard, error) {
	return nil, nil
}

type stubCardService struct {
	giftcards.Service
	redeemed decimal.Decimal
	saleID   uuid.UUID
}

func (s *stubCardService) RedeemForSale(ctx context.Context, tx *gorm.DB, card *models.GiftCard, amount decimal.Decimal, saleID uuid.UUID) error {
	s.redeemed = amount
	s.saleID = saleID
	return nil
}

type stubLoyalty struct {
	redeemed int
	earned   int
}

func (s *stubLoyalty) Redeem(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, saleID *uuid.UUID, points int) error {
	s.redeemed = points
	return nil
}
func (s *stubLoyalty) Earn(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, saleID *uuid.UUID, points int) error {
	s.earned = points
	return nil
}
func (s *stubLoyalty) History(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*loyalty.TransactionList, error) {
	return nil, nil
}

type stubCreditRepo struct {
	created *models.CustomerCredit
}

func (s *stubCreditRepo) WithTx(tx *gorm.DB) credits.Repository { return s }
func (s *stubCreditRepo) Create(ctx context.Context, credit *models.CustomerCredit) error {
	s.created = credit
	return nil
}
func (s *stubCreditRepo) FindBySaleID(ctx context.Context, saleID uuid.UUID) (*models.CustomerCredit, error) {
	return nil, nil
}
func (s *stubCreditRepo) UpdateRepayment(ctx context.Context, id uuid.UUID, remaining decimal.Decimal, status enums.CreditStatus) error {
	return nil
}
func (s *stubCreditRepo) ListDueBefore(ctx context.Context, cutoff time.Time) ([]models.CustomerCredit, error) {
	return nil, nil
}
func (s *stubCreditRepo) MarkOverdue(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return 0, nil
}

type stubSaleRepo struct {
	number        int64
	created       *models.Sale
	createdStatus enums.SaleStatus
	promoted      enums.SaleStatus
	payments      []models.Payment
}

func (s *stubSaleRepo) WithTx(tx *gorm.DB) sales.Repository { return s }
func (s *stubSaleRepo) NextNumber(ctx context.Context) (int64, error) {
	return s.number, nil
}
func (s *stubSaleRepo) Create(ctx context.Context, sale *models.Sale) error {
	sale.ID = uuid.New()
	s.created = sale
	s.createdStatus = sale.Status
	return nil
}
func (s *stubSaleRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	s.payments = append(s.payments, *payment)
	return nil
}
func (s *stubSaleRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	return nil, nil
}
func (s *stubSaleRepo) FindByIDUnscoped(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	return nil, nil
}
func (s *stubSaleRepo) List(ctx context.Context, params pagination.Params, filters sales.SaleFilters) (*sales.SaleList, error) {
	return nil, nil
}
func (s *stubSaleRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SaleStatus) error {
	s.promoted = status
	return nil
}
func (s *stubSaleRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}
func (s *stubSaleRepo) SoftDelete(ctx context.Context, id uuid.UUID) error { return nil }
func (s *stubSaleRepo) Restore(ctx context.Context, id uuid.UUID) error    { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func TestQuotePricesCart(t *testing.T) {
	productID := uuid.New()
	productRepo := &stubProductRepo{products: []models.Product{{
		ID:       productID,
		Name:     "olive oil",
		Unit:     enums.UnitPiece,
		Price:    dec("12.50"),
		IsActive: true,
	}}}

	svc := NewService(stubTx{}, productRepo, &stubCustomerRepo{}, &stubCardRepo{}, &stubCardService{}, &stubLoyalty{}, &stubCreditRepo{}, &stubSaleRepo{}, testRules(), testLogger())

	quote, err := svc.Quote(context.Background(), QuoteInput{
		Items: []CheckoutItem{{ProductID: productID, Qty: dec("2")}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quote.Lines) != 1 {
		t.Fatalf("expected one quote line, got %d", len(quote.Lines))
	}
	if !quote.GrandTotal.Equal(dec("25.00")) {
		t.Fatalf("expected grand total 25.00, got %s", quote.GrandTotal)
	}
}

func TestQuoteRejectsInactiveProduct(t *testing.T) {
	productID := uuid.New()
	productRepo := &stubProductRepo{products: []models.Product{{
		ID:       productID,
		SKU:      "SKU-1",
		Unit:     enums.UnitPiece,
		Price:    dec("1.00"),
		IsActive: false,
	}}}

	svc := NewService(stubTx{}, productRepo, &stubCustomerRepo{}, &stubCardRepo{}, &stubCardService{}, &stubLoyalty{}, &stubCreditRepo{}, &stubSaleRepo{}, testRules(), testLogger())

	_, err := svc.Quote(context.Background(), QuoteInput{
		Items: []CheckoutItem{{ProductID: productID, Qty: dec("1")}},
	})
	if err == nil {
		t.Fatal("expected error for inactive product")
	}
}

func TestCheckoutSettlesAcrossInstruments(t *testing.T) {
	productID := uuid.New()
	customerID := uuid.New()
	cardNumber := "GC-1001"
	expiry := time.Now().Add(30 * 24 * time.Hour)

	productRepo := &stubProductRepo{products: []models.Product{{
		ID:       productID,
		Name:     "rice 5kg",
		Unit:     enums.UnitPiece,
		Price:    dec("25.00"),
		IsActive: true,
	}}}
	customerRepo := &stubCustomerRepo{customer: &models.Customer{
		ID:            customerID,
		CurrentPoints: 200,
	}}
	cardRepo := &stubCardRepo{card: &models.GiftCard{
		ID:             uuid.New(),
		CardNumber:     cardNumber,
		Status:         enums.GiftCardStatusActive,
		CurrentBalance: dec("40.00"),
		ExpiryDate:     &expiry,
	}}
	cardSvc := &stubCardService{}
	loyaltySvc := &stubLoyalty{}
	creditRepo := &stubCreditRepo{}
	saleRepo := &stubSaleRepo{number: 1001}

	svc := NewService(stubTx{}, productRepo, customerRepo, cardRepo, cardSvc, loyaltySvc, creditRepo, saleRepo, testRules(), testLogger())

	dueDate := time.Now().Add(7 * 24 * time.Hour)
	sale, err := svc.Checkout(context.Background(), CheckoutInput{
		BranchID:       uuid.New(),
		CustomerID:     &customerID,
		Items:          []CheckoutItem{{ProductID: productID, Qty: dec("4")}},
		PaymentStatus:  enums.PaymentStatusPartial,
		PaymentMethod:  enums.PaymentMethodCash,
		PaidAmount:     dec("30.00"),
		GiftCardNumber: &cardNumber,
		DueDate:        &dueDate,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 100 total = 40 gift card + 30 paid + 30 credit
	if !sale.GiftCardAmount.Equal(dec("40.00")) {
		t.Fatalf("expected gift card amount 40.00, got %s", sale.GiftCardAmount)
	}
	if !sale.PaidAmount.Equal(dec("30.00")) {
		t.Fatalf("expected paid amount 30.00, got %s", sale.PaidAmount)
	}
	if !sale.CreditAmount.Equal(dec("30.00")) {
		t.Fatalf("expected credit amount 30.00, got %s", sale.CreditAmount)
	}
	if sale.Status != enums.SaleStatusCompleted {
		t.Fatalf("expected completed status, got %s", sale.Status)
	}
	// The sale is born pending and only promoted once every ledger
	// movement has landed.
	if saleRepo.createdStatus != enums.SaleStatusPending {
		t.Fatalf("expected sale created as pending, got %s", saleRepo.createdStatus)
	}
	if saleRepo.promoted != enums.SaleStatusCompleted {
		t.Fatalf("expected promotion to completed, got %q", saleRepo.promoted)
	}
	if sale.Number != 1001 {
		t.Fatalf("expected sale number 1001, got %d", sale.Number)
	}

	if !cardSvc.redeemed.Equal(dec("40.00")) {
		t.Fatalf("expected card redeem of 40.00, got %s", cardSvc.redeemed)
	}
	if cardSvc.saleID != sale.ID {
		t.Fatal("expected card redeem tied to the created sale")
	}
	if got := productRepo.decrements[productID]; !got.Equal(dec("4")) {
		t.Fatalf("expected stock decrement of 4, got %s", got)
	}
	if creditRepo.created == nil {
		t.Fatal("expected credit record")
	}
	if !creditRepo.created.RemainingAmount.Equal(dec("30.00")) {
		t.Fatalf("expected remaining 30.00, got %s", creditRepo.created.RemainingAmount)
	}
	if creditRepo.created.DueDate == nil {
		t.Fatal("expected due date on credit record")
	}
	if len(saleRepo.payments) != 1 || !saleRepo.payments[0].Amount.Equal(dec("30.00")) {
		t.Fatal("expected one payment row of 30.00")
	}
	// the earn base is the full grand total; gift card coverage still earns
	if loyaltySvc.earned != 100 {
		t.Fatalf("expected 100 points earned, got %d", loyaltySvc.earned)
	}
	if loyaltySvc.redeemed != 0 {
		t.Fatalf("expected no points redeemed, got %d", loyaltySvc.redeemed)
	}
}

func TestCheckoutRequiresPaymentMethodForPaidPortion(t *testing.T) {
	productID := uuid.New()
	productRepo := &stubProductRepo{products: []models.Product{{
		ID:       productID,
		Unit:     enums.UnitPiece,
		Price:    dec("10.00"),
		IsActive: true,
	}}}

	svc := NewService(stubTx{}, productRepo, &stubCustomerRepo{}, &stubCardRepo{}, &stubCardService{}, &stubLoyalty{}, &stubCreditRepo{}, &stubSaleRepo{number: 1}, testRules(), testLogger())

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		BranchID:      uuid.New(),
		Items:         []CheckoutItem{{ProductID: productID, Qty: dec("1")}},
		PaymentStatus: enums.PaymentStatusPaid,
	})
	if err == nil {
		t.Fatal("expected error when the paid portion has no payment method")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckoutRequiresItems(t *testing.T) {
	svc := NewService(stubTx{}, &stubProductRepo{}, &stubCustomerRepo{}, &stubCardRepo{}, &stubCardService{}, &stubLoyalty{}, &stubCreditRepo{}, &stubSaleRepo{}, testRules(), testLogger())

	_, err := svc.Checkout(context.Background(), CheckoutInput{BranchID: uuid.New()})
	if err == nil {
		t.Fatal("expected error for empty cart")
	}
}
