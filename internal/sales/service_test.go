package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/internal/products"
	"github.com/retailware/tillpoint-backend/pkg/db/models"
	"github.com/retailware/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/pagination"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubSaleRepo struct {
	sale     *models.Sale
	updates  map[string]any
	status   *enums.SaleStatus
	deleted  bool
	restored bool
	payments []models.Payment
}

func (s *stubSaleRepo) WithTx(tx *gorm.DB) Repository                 { return s }
func (s *stubSaleRepo) NextNumber(ctx context.Context) (int64, error) { return 1001, nil }
func (s *stubSaleRepo) Create(ctx context.Context, sale *models.Sale) error {
	return nil
}
func (s *stubSaleRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	s.payments = append(s.payments, *payment)
	return nil
}
func (s *stubSaleRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	if s.sale == nil || s.sale.DeletedAt.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}
	return s.sale, nil
}
func (s *stubSaleRepo) FindByIDUnscoped(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	if s.sale == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}
	return s.sale, nil
}
func (s *stubSaleRepo) List(ctx context.Context, params pagination.Params, filters SaleFilters) (*SaleList, error) {
	return &SaleList{}, nil
}
func (s *stubSaleRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SaleStatus) error {
	s.status = &status
	return nil
}
func (s *stubSaleRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.updates == nil {
		s.updates = map[string]any{}
	}
	for k, v := range updates {
		s.updates[k] = v
	}
	return nil
}
func (s *stubSaleRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	s.deleted = true
	return nil
}
func (s *stubSaleRepo) Restore(ctx context.Context, id uuid.UUID) error {
	s.restored = true
	return nil
}

type stubProductRepo struct {
	increments map[uuid.UUID]decimal.Decimal
	decrements map[uuid.UUID]decimal.Decimal
}

func (s *stubProductRepo) WithTx(tx *gorm.DB) products.Repository { return s }
func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}
func (s *stubProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return nil, nil
}
func (s *stubProductRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error {
	if s.decrements == nil {
		s.decrements = map[uuid.UUID]decimal.Decimal{}
	}
	s.decrements[id] = s.decrements[id].Add(qty)
	return nil
}
func (s *stubProductRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error {
	if s.increments == nil {
		s.increments = map[uuid.UUID]decimal.Decimal{}
	}
	s.increments[id] = s.increments[id].Add(qty)
	return nil
}

type stubCreditService struct {
	credit *models.CustomerCredit
	err    error
	amount decimal.Decimal
}

func (s *stubCreditService) ApplyPayment(ctx context.Context, tx *gorm.DB, saleID uuid.UUID, amount decimal.Decimal) (*models.CustomerCredit, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.amount = amount
	return s.credit, nil
}
func (s *stubCreditService) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func completedSale(productID uuid.UUID) *models.Sale {
	return &models.Sale{
		ID:            uuid.New(),
		Number:        1001,
		Status:        enums.SaleStatusCompleted,
		PaymentStatus: enums.PaymentStatusPartial,
		Total:         dec("100.00"),
		PaidAmount:    dec("70.00"),
		CreditAmount:  dec("30.00"),
		Items: []models.SaleItem{{
			ProductID: productID,
			Qty:       dec("4"),
		}},
	}
}

func TestCancelOnlyPendingSales(t *testing.T) {
	repo := &stubSaleRepo{sale: &models.Sale{ID: uuid.New(), Status: enums.SaleStatusPending}}
	svc := NewService(repo, stubTx{}, &stubProductRepo{}, &stubCreditService{})

	sale, err := svc.Cancel(context.Background(), repo.sale.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sale.Status != enums.SaleStatusCancelled {
		t.Fatalf("expected cancelled, got %s", sale.Status)
	}

	repo.sale.Status = enums.SaleStatusCompleted
	if _, err := svc.Cancel(context.Background(), repo.sale.ID); err == nil {
		t.Fatal("expected error cancelling a completed sale")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestDeleteRestoresStockOnce(t *testing.T) {
	productID := uuid.New()
	repo := &stubSaleRepo{sale: completedSale(productID)}
	productRepo := &stubProductRepo{}
	svc := NewService(repo, stubTx{}, productRepo, &stubCreditService{})

	if err := svc.Delete(context.Background(), repo.sale.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.deleted {
		t.Fatal("expected soft delete")
	}
	if got := productRepo.increments[productID]; !got.Equal(dec("4")) {
		t.Fatalf("expected stock increment of 4, got %s", got)
	}
	if restored, ok := repo.updates["stock_restored"].(bool); !ok || !restored {
		t.Fatal("expected stock_restored flag set")
	}

	// A sale already flagged keeps its stock untouched on delete.
	repo2 := &stubSaleRepo{sale: completedSale(productID)}
	repo2.sale.StockRestored = true
	productRepo2 := &stubProductRepo{}
	svc2 := NewService(repo2, stubTx{}, productRepo2, &stubCreditService{})

	if err := svc2.Delete(context.Background(), repo2.sale.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(productRepo2.increments) != 0 {
		t.Fatal("expected no stock increment for already-restored sale")
	}
}

func TestDeleteRejectsNonCompletedSales(t *testing.T) {
	repo := &stubSaleRepo{sale: &models.Sale{ID: uuid.New(), Status: enums.SaleStatusPending}}
	svc := NewService(repo, stubTx{}, &stubProductRepo{}, &stubCreditService{})

	if err := svc.Delete(context.Background(), repo.sale.ID); err == nil {
		t.Fatal("expected error deleting a pending sale")
	}
}

func TestRestoreDoesNotReDeductStock(t *testing.T) {
	productID := uuid.New()
	sale := completedSale(productID)
	sale.StockRestored = true
	sale.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	repo := &stubSaleRepo{sale: sale}
	productRepo := &stubProductRepo{}
	svc := NewService(repo, stubTx{}, productRepo, &stubCreditService{})

	result, err := svc.Restore(context.Background(), sale.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.restored {
		t.Fatal("expected restore call")
	}
	if len(productRepo.decrements) != 0 {
		t.Fatal("restore must not re-deduct stock")
	}
	if result.StockWarning != StockWarning {
		t.Fatalf("expected stock warning, got %q", result.StockWarning)
	}
}

func TestRestoreRejectsLiveSale(t *testing.T) {
	repo := &stubSaleRepo{sale: completedSale(uuid.New())}
	svc := NewService(repo, stubTx{}, &stubProductRepo{}, &stubCreditService{})

	if _, err := svc.Restore(context.Background(), repo.sale.ID); err == nil {
		t.Fatal("expected error restoring a live sale")
	}
}

func TestAddPaymentUpdatesSaleAndCredit(t *testing.T) {
	productID := uuid.New()
	repo := &stubSaleRepo{sale: completedSale(productID)}
	creditSvc := &stubCreditService{credit: &models.CustomerCredit{
		RemainingAmount: decimal.Zero,
		Status:          enums.CreditStatusPaid,
	}}
	svc := NewService(repo, stubTx{}, &stubProductRepo{}, creditSvc)

	sale, err := svc.AddPayment(context.Background(), repo.sale.ID, AddPaymentInput{
		Amount: dec("30.00"),
		Method: enums.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !creditSvc.amount.Equal(dec("30.00")) {
		t.Fatalf("expected credit payment of 30.00, got %s", creditSvc.amount)
	}
	if sale.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid status, got %s", sale.PaymentStatus)
	}
	if !sale.PaidAmount.Equal(dec("100.00")) {
		t.Fatalf("expected paid amount 100.00, got %s", sale.PaidAmount)
	}
	if !sale.CreditAmount.IsZero() {
		t.Fatalf("expected zero credit remaining, got %s", sale.CreditAmount)
	}
	if len(repo.payments) != 1 {
		t.Fatalf("expected one payment row, got %d", len(repo.payments))
	}
}

func TestAddPaymentRejectsFullyPaidSale(t *testing.T) {
	sale := completedSale(uuid.New())
	sale.PaymentStatus = enums.PaymentStatusPaid
	repo := &stubSaleRepo{sale: sale}
	svc := NewService(repo, stubTx{}, &stubProductRepo{}, &stubCreditService{})

	_, err := svc.AddPayment(context.Background(), sale.ID, AddPaymentInput{
		Amount: dec("10.00"),
		Method: enums.PaymentMethodCard,
	})
	if err == nil {
		t.Fatal("expected error on fully paid sale")
	}
}

func TestAddPaymentValidatesInput(t *testing.T) {
	svc := NewService(&stubSaleRepo{}, stubTx{}, &stubProductRepo{}, &stubCreditService{})

	if _, err := svc.AddPayment(context.Background(), uuid.New(), AddPaymentInput{
		Amount: dec("10.00"),
		Method: "iou",
	}); err == nil {
		t.Fatal("expected error for invalid method")
	}
	if _, err := svc.AddPayment(context.Background(), uuid.New(), AddPaymentInput{
		Amount: dec("-1.00"),
		Method: enums.PaymentMethodCash,
	}); err == nil {
		t.Fatal("expected error for non-positive amount")
	}
}
