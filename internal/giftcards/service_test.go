package giftcards

import (
	"context"
	"testing"
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

type stubShiftGate struct {
	err error
}

func (s *stubShiftGate) RequireOpenShift(ctx context.Context, branchID uuid.UUID) error {
	return s.err
}

type stubCardRepo struct {
	cards    map[string]*models.GiftCard
	updates  map[uuid.UUID]map[string]any
	txns     []models.GiftCardTransaction
	expired  []models.GiftCard
	debitErr error
}

func newStubCardRepo(cards ...*models.GiftCard) *stubCardRepo {
	repo := &stubCardRepo{
		cards:   map[string]*models.GiftCard{},
		updates: map[uuid.UUID]map[string]any{},
	}
	for _, card := range cards {
		repo.cards[card.CardNumber] = card
	}
	return repo
}

func (s *stubCardRepo) WithTx(tx *gorm.DB) Repository { return s }
func (s *stubCardRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.GiftCard, error) {
	for _, card := range s.cards {
		if card.ID == id {
			return card, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift card not found")
}
func (s *stubCardRepo) FindByCardNumber(ctx context.Context, cardNumber string) (*models.GiftCard, error) {
	card, ok := s.cards[cardNumber]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift card not found")
	}
	return card, nil
}
func (s *stubCardRepo) Create(ctx context.Context, card *models.GiftCard) error {
	card.ID = uuid.New()
	s.cards[card.CardNumber] = card
	return nil
}
func (s *stubCardRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.updates[id] == nil {
		s.updates[id] = map[string]any{}
	}
	for k, v := range updates {
		s.updates[id][k] = v
	}
	return nil
}
func (s *stubCardRepo) DebitBalance(ctx context.Context, id uuid.UUID, amount, expectedBalance decimal.Decimal) error {
	return s.debitErr
}
func (s *stubCardRepo) CreditBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return nil
}
func (s *stubCardRepo) CreateTransaction(ctx context.Context, txn *models.GiftCardTransaction) error {
	s.txns = append(s.txns, *txn)
	return nil
}
func (s *stubCardRepo) ListTransactions(ctx context.Context, cardID uuid.UUID) ([]models.GiftCardTransaction, error) {
	return s.txns, nil
}
func (s *stubCardRepo) ListExpired(ctx context.Context, cutoff time.Time) ([]models.GiftCard, error) {
	return s.expired, nil
}

type stubSaleRepo struct {
	created       *models.Sale
	createdStatus enums.SaleStatus
	promoted      enums.SaleStatus
	payments      []models.Payment
}

func (s *stubSaleRepo) WithTx(tx *gorm.DB) sales.Repository           { return s }
func (s *stubSaleRepo) NextNumber(ctx context.Context) (int64, error) { return 2001, nil }
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

func testService(repo Repository, saleRepo sales.Repository, gate shiftGate) Service {
	return NewService(repo, stubTx{}, saleRepo, gate, config.GiftCardConfig{DefaultExpiryMonths: 12}, logger.New(logger.Options{ServiceName: "test"}))
}

func TestLookupOnlySpendableStates(t *testing.T) {
	free := &models.GiftCard{ID: uuid.New(), CardNumber: "GC-FREE", Status: enums.GiftCardStatusFree}
	configured := &models.GiftCard{ID: uuid.New(), CardNumber: "GC-CONF", Status: enums.GiftCardStatusConfigured, Denomination: dec("50.00")}
	repo := newStubCardRepo(free, configured)
	svc := testService(repo, &stubSaleRepo{}, &stubShiftGate{})

	if _, err := svc.Lookup(context.Background(), "GC-FREE"); err == nil {
		t.Fatal("expected error looking up a free card")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	summary, err := svc.Lookup(context.Background(), "GC-CONF")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Status != enums.GiftCardStatusConfigured {
		t.Fatalf("expected configured, got %s", summary.Status)
	}
}

func TestLookupRejectsExpiredCard(t *testing.T) {
	expiry := time.Now().Add(-time.Hour)
	card := &models.GiftCard{
		ID:         uuid.New(),
		CardNumber: "GC-EXP",
		Status:     enums.GiftCardStatusActive,
		ExpiryDate: &expiry,
	}
	svc := testService(newStubCardRepo(card), &stubSaleRepo{}, &stubShiftGate{})

	if _, err := svc.Lookup(context.Background(), "GC-EXP"); err == nil {
		t.Fatal("expected error for expired card")
	}
}

func TestConfigureAssignsDenomination(t *testing.T) {
	card := &models.GiftCard{ID: uuid.New(), CardNumber: "GC-1", Status: enums.GiftCardStatusFree}
	repo := newStubCardRepo(card)
	svc := testService(repo, &stubSaleRepo{}, &stubShiftGate{})

	configured, err := svc.Configure(context.Background(), ConfigureInput{
		CardNumber:   "GC-1",
		Denomination: dec("50.00"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if configured.Status != enums.GiftCardStatusConfigured {
		t.Fatalf("expected configured, got %s", configured.Status)
	}
	if len(repo.txns) != 1 {
		t.Fatalf("expected one ledger entry, got %d", len(repo.txns))
	}
	txn := repo.txns[0]
	if txn.Type != enums.GiftCardTxnIssue {
		t.Fatalf("expected issue entry, got %s", txn.Type)
	}
	// balances only move at activation
	if !txn.BalanceBefore.IsZero() || !txn.BalanceAfter.IsZero() {
		t.Fatal("expected zero balances on the issue entry")
	}
}

func TestConfigureRejectsNonFreeCard(t *testing.T) {
	card := &models.GiftCard{ID: uuid.New(), CardNumber: "GC-1", Status: enums.GiftCardStatusActive}
	svc := testService(newStubCardRepo(card), &stubSaleRepo{}, &stubShiftGate{})

	_, err := svc.Configure(context.Background(), ConfigureInput{CardNumber: "GC-1", Denomination: dec("50.00")})
	if err == nil {
		t.Fatal("expected error configuring a non-free card")
	}
}

func TestSellRequiresOpenShift(t *testing.T) {
	card := &models.GiftCard{ID: uuid.New(), CardNumber: "GC-1", Status: enums.GiftCardStatusConfigured, Denomination: dec("50.00")}
	gate := &stubShiftGate{err: pkgerrors.New(pkgerrors.CodeShiftClosed, "open a fiscal shift before selling gift cards")}
	saleRepo := &stubSaleRepo{}
	svc := testService(newStubCardRepo(card), saleRepo, gate)

	_, err := svc.Sell(context.Background(), SellInput{
		CardNumber:    "GC-1",
		BranchID:      uuid.New(),
		PaymentMethod: enums.PaymentMethodCash,
	})
	if err == nil {
		t.Fatal("expected shift-closed error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeShiftClosed {
		t.Fatalf("expected shift closed code, got %v", err)
	}
	if saleRepo.created != nil {
		t.Fatal("no sale may be recorded with the shift closed")
	}
}

func TestSellActivatesConfiguredCard(t *testing.T) {
	card := &models.GiftCard{ID: uuid.New(), CardNumber: "GC-1", Status: enums.GiftCardStatusConfigured, Denomination: dec("50.00")}
	repo := newStubCardRepo(card)
	saleRepo := &stubSaleRepo{}
	svc := testService(repo, saleRepo, &stubShiftGate{})

	result, err := svc.Sell(context.Background(), SellInput{
		CardNumber:    "GC-1",
		BranchID:      uuid.New(),
		PaymentMethod: enums.PaymentMethodCard,
		ExpiryMonths:  6,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Card.Status != enums.GiftCardStatusActive {
		t.Fatalf("expected active card, got %s", result.Card.Status)
	}
	if !result.Card.CurrentBalance.Equal(dec("50.00")) {
		t.Fatalf("expected balance 50.00, got %s", result.Card.CurrentBalance)
	}
	if result.Card.ExpiryDate == nil {
		t.Fatal("expected an expiry date")
	}
	wantExpiry := time.Now().UTC().AddDate(0, 6, 0)
	if result.Card.ExpiryDate.Sub(wantExpiry) > time.Minute || wantExpiry.Sub(*result.Card.ExpiryDate) > time.Minute {
		t.Fatalf("expected expiry near %s, got %s", wantExpiry, result.Card.ExpiryDate)
	}

	sale := saleRepo.created
	if sale == nil {
		t.Fatal("expected a sale record")
	}
	if saleRepo.createdStatus != enums.SaleStatusPending {
		t.Fatalf("expected sale created as pending, got %s", saleRepo.createdStatus)
	}
	if saleRepo.promoted != enums.SaleStatusCompleted {
		t.Fatalf("expected promotion to completed, got %q", saleRepo.promoted)
	}
	if sale.Status != enums.SaleStatusCompleted || sale.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected completed/paid sale, got %s/%s", sale.Status, sale.PaymentStatus)
	}
	if !sale.Total.Equal(dec("50.00")) {
		t.Fatalf("expected total 50.00, got %s", sale.Total)
	}
	if len(saleRepo.payments) != 1 {
		t.Fatalf("expected one payment row, got %d", len(saleRepo.payments))
	}
	if len(repo.txns) != 1 || repo.txns[0].Type != enums.GiftCardTxnActivate {
		t.Fatal("expected an activate ledger entry")
	}
	if !repo.txns[0].BalanceAfter.Equal(dec("50.00")) {
		t.Fatalf("expected balance after 50.00, got %s", repo.txns[0].BalanceAfter)
	}
}

func TestSellRejectsNonConfiguredCard(t *testing.T) {
	card := &models.GiftCard{ID: uuid.New(), CardNumber: "GC-1", Status: enums.GiftCardStatusActive}
	svc := testService(newStubCardRepo(card), &stubSaleRepo{}, &stubShiftGate{})

	_, err := svc.Sell(context.Background(), SellInput{
		CardNumber:    "GC-1",
		BranchID:      uuid.New(),
		PaymentMethod: enums.PaymentMethodCash,
	})
	if err == nil {
		t.Fatal("expected error selling an already-active card")
	}
}

func TestDeactivateAndReactivateRestoreStatus(t *testing.T) {
	card := &models.GiftCard{ID: uuid.New(), CardNumber: "GC-1", Status: enums.GiftCardStatusActive}
	svc := testService(newStubCardRepo(card), &stubSaleRepo{}, &stubShiftGate{})

	deactivated, err := svc.Deactivate(context.Background(), "GC-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deactivated.Status != enums.GiftCardStatusInactive {
		t.Fatalf("expected inactive, got %s", deactivated.Status)
	}
	if deactivated.StatusBefore == nil || *deactivated.StatusBefore != enums.GiftCardStatusActive {
		t.Fatal("expected the prior status to be remembered")
	}

	reactivated, err := svc.Reactivate(context.Background(), "GC-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reactivated.Status != enums.GiftCardStatusActive {
		t.Fatalf("expected active after reactivation, got %s", reactivated.Status)
	}
	if reactivated.StatusBefore != nil {
		t.Fatal("expected status_before cleared")
	}
}

func TestDeactivateRejectsTerminalStates(t *testing.T) {
	card := &models.GiftCard{ID: uuid.New(), CardNumber: "GC-1", Status: enums.GiftCardStatusDepleted}
	svc := testService(newStubCardRepo(card), &stubSaleRepo{}, &stubShiftGate{})

	if _, err := svc.Deactivate(context.Background(), "GC-1"); err == nil {
		t.Fatal("expected error deactivating a depleted card")
	}
}

func TestReactivateOnlyInactiveCards(t *testing.T) {
	card := &models.GiftCard{ID: uuid.New(), CardNumber: "GC-1", Status: enums.GiftCardStatusActive}
	svc := testService(newStubCardRepo(card), &stubSaleRepo{}, &stubShiftGate{})

	if _, err := svc.Reactivate(context.Background(), "GC-1"); err == nil {
		t.Fatal("expected error reactivating an active card")
	}
}

func TestRedeemForSaleDepletesAtZero(t *testing.T) {
	card := &models.GiftCard{
		ID:             uuid.New(),
		CardNumber:     "GC-1",
		Status:         enums.GiftCardStatusActive,
		CurrentBalance: dec("20.00"),
	}
	repo := newStubCardRepo(card)
	svc := testService(repo, &stubSaleRepo{}, &stubShiftGate{})

	saleID := uuid.New()
	if err := svc.RedeemForSale(context.Background(), nil, card, dec("20.00"), saleID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.Status != enums.GiftCardStatusDepleted {
		t.Fatalf("expected depleted, got %s", card.Status)
	}
	if !card.CurrentBalance.IsZero() {
		t.Fatalf("expected zero balance, got %s", card.CurrentBalance)
	}
	if len(repo.txns) != 1 || repo.txns[0].Type != enums.GiftCardTxnRedeem {
		t.Fatal("expected a redeem ledger entry")
	}
	if repo.txns[0].SaleID == nil || *repo.txns[0].SaleID != saleID {
		t.Fatal("expected ledger entry tied to the sale")
	}
}

func TestRedeemForSalePropagatesDebitConflict(t *testing.T) {
	card := &models.GiftCard{
		ID:             uuid.New(),
		CardNumber:     "GC-1",
		Status:         enums.GiftCardStatusActive,
		CurrentBalance: dec("20.00"),
	}
	repo := newStubCardRepo(card)
	repo.debitErr = pkgerrors.New(pkgerrors.CodeConflict, "gift card balance changed, retry the sale")
	svc := testService(repo, &stubSaleRepo{}, &stubShiftGate{})

	err := svc.RedeemForSale(context.Background(), nil, card, dec("10.00"), uuid.New())
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
	if len(repo.txns) != 0 {
		t.Fatal("no ledger entry may be written on a failed debit")
	}
}

func TestExpireSweepDrainsAndExpires(t *testing.T) {
	expiry := time.Now().Add(-time.Hour)
	withBalance := models.GiftCard{
		ID:             uuid.New(),
		CardNumber:     "GC-1",
		Status:         enums.GiftCardStatusActive,
		CurrentBalance: dec("15.00"),
		ExpiryDate:     &expiry,
	}
	drained := models.GiftCard{
		ID:         uuid.New(),
		CardNumber: "GC-2",
		Status:     enums.GiftCardStatusConfigured,
		ExpiryDate: &expiry,
	}
	repo := newStubCardRepo()
	repo.expired = []models.GiftCard{withBalance, drained}
	svc := testService(repo, &stubSaleRepo{}, &stubShiftGate{})

	count, err := svc.ExpireSweep(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 cards expired, got %d", count)
	}
	if len(repo.txns) != 1 || repo.txns[0].Type != enums.GiftCardTxnExpire {
		t.Fatal("expected one expire ledger entry for the card holding balance")
	}
	if status := repo.updates[withBalance.ID]["status"]; status != enums.GiftCardStatusExpired {
		t.Fatalf("expected expired status update, got %v", status)
	}
	if status := repo.updates[drained.ID]["status"]; status != enums.GiftCardStatusExpired {
		t.Fatalf("expected expired status update, got %v", status)
	}
}
