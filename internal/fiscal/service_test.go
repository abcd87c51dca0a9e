package fiscal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailware/tillpoint-backend/pkg/config"
	"github.com/retailware/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/logger"
)

type stubRepo struct {
	open    *models.FiscalShift
	created *models.FiscalShift
	closed  bool
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }
func (s *stubRepo) FindOpenShift(ctx context.Context, branchID uuid.UUID) (*models.FiscalShift, error) {
	if s.open == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open shift")
	}
	return s.open, nil
}
func (s *stubRepo) Create(ctx context.Context, shift *models.FiscalShift) error {
	shift.ID = uuid.New()
	s.created = shift
	s.open = shift
	return nil
}
func (s *stubRepo) Close(ctx context.Context, id uuid.UUID) error {
	s.closed = true
	s.open = nil
	return nil
}

type stubCache struct {
	values  map[string]string
	deleted []string
	getErr  error
}

func newStubCache() *stubCache {
	return &stubCache{values: map[string]string{}}
}

func (s *stubCache) Get(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	value, ok := s.values[key]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "cache miss")
	}
	return value, nil
}
func (s *stubCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	return nil
}
func (s *stubCache) Del(ctx context.Context, keys ...string) error {
	s.deleted = append(s.deleted, keys...)
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}
func (s *stubCache) FiscalStatusKey(branchID string) string {
	return "tp:fiscal:status:" + branchID
}

func testService(repo Repository, cache statusCache) Service {
	return NewService(repo, cache, config.FiscalConfig{StatusTTL: 15 * time.Second}, logger.New(logger.Options{ServiceName: "test"}))
}

func TestStatusCachesDatabaseAnswer(t *testing.T) {
	branchID := uuid.New()
	repo := &stubRepo{open: &models.FiscalShift{ID: uuid.New(), BranchID: branchID}}
	cache := newStubCache()
	svc := testService(repo, cache)

	status, err := svc.Status(context.Background(), branchID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.ShiftOpen || !status.Online {
		t.Fatal("expected open online status")
	}
	if cache.values[cache.FiscalStatusKey(branchID.String())] != "open" {
		t.Fatal("expected status cached as open")
	}

	// Cached answer short-circuits the repository.
	repo.open = nil
	status, err = svc.Status(context.Background(), branchID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.ShiftOpen {
		t.Fatal("expected the cached open answer")
	}
}

func TestRequireOpenShiftClosed(t *testing.T) {
	svc := testService(&stubRepo{}, newStubCache())

	err := svc.RequireOpenShift(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected shift-closed error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeShiftClosed {
		t.Fatalf("expected shift closed code, got %v", err)
	}
}

func TestOpenShiftRejectsSecondOpen(t *testing.T) {
	branchID := uuid.New()
	repo := &stubRepo{}
	cache := newStubCache()
	svc := testService(repo, cache)

	shift, err := svc.OpenShift(context.Background(), branchID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shift.BranchID != branchID {
		t.Fatal("expected the shift bound to the branch")
	}

	if _, err := svc.OpenShift(context.Background(), branchID, nil); err == nil {
		t.Fatal("expected error opening a second shift")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCloseShiftInvalidatesCache(t *testing.T) {
	branchID := uuid.New()
	repo := &stubRepo{open: &models.FiscalShift{ID: uuid.New(), BranchID: branchID}}
	cache := newStubCache()
	cache.values[cache.FiscalStatusKey(branchID.String())] = "open"
	svc := testService(repo, cache)

	shift, err := svc.CloseShift(context.Background(), branchID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shift.ClosedAt == nil {
		t.Fatal("expected closed timestamp")
	}
	if !repo.closed {
		t.Fatal("expected repository close call")
	}
	if len(cache.deleted) == 0 {
		t.Fatal("expected cache invalidation")
	}
}

func TestCloseShiftWithoutOpenShift(t *testing.T) {
	svc := testService(&stubRepo{}, newStubCache())
	if _, err := svc.CloseShift(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error closing with no open shift")
	}
}
