package fiscal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/retailware/tillpoint-backend/pkg/config"
	"github.com/retailware/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/logger"
)

// Status is the polled register state the POS frontend gates on.
type Status struct {
	Online    bool `json:"online"`
	ShiftOpen bool `json:"shift_open"`
}

type statusCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	FiscalStatusKey(branchID string) string
}

// Service answers shift-status queries and manages shift open/close.
type Service interface {
	Status(ctx context.Context, branchID uuid.UUID) (Status, error)
	// RequireOpenShift fails with a retryable shift-closed error when the
	// branch has no open shift.
	RequireOpenShift(ctx context.Context, branchID uuid.UUID) error
	OpenShift(ctx context.Context, branchID uuid.UUID, openedBy *uuid.UUID) (*models.FiscalShift, error)
	CloseShift(ctx context.Context, branchID uuid.UUID) (*models.FiscalShift, error)
}

type service struct {
	repo  Repository
	cache statusCache
	cfg   config.FiscalConfig
	logg  *logger.Logger
}

// NewService builds the fiscal status service.
func NewService(repo Repository, cache statusCache, cfg config.FiscalConfig, logg *logger.Logger) Service {
	return &service{repo: repo, cache: cache, cfg: cfg, logg: logg}
}

const (
	statusShiftOpen   = "open"
	statusShiftClosed = "closed"
)

// Status is polled aggressively by registers, so the answer is cached with
// a short TTL. A cache miss or error falls through to the database.
func (s *service) Status(ctx context.Context, branchID uuid.UUID) (Status, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, s.cache.FiscalStatusKey(branchID.String()))
		if err == nil {
			return Status{Online: true, ShiftOpen: cached == statusShiftOpen}, nil
		}
	}

	open, err := s.shiftOpen(ctx, branchID)
	if err != nil {
		return Status{}, err
	}

	if s.cache != nil {
		value := statusShiftClosed
		if open {
			value = statusShiftOpen
		}
		key := s.cache.FiscalStatusKey(branchID.String())
		if err := s.cache.Set(ctx, key, value, s.cfg.StatusTTL); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to cache fiscal status")
		}
	}
	return Status{Online: true, ShiftOpen: open}, nil
}

func (s *service) RequireOpenShift(ctx context.Context, branchID uuid.UUID) error {
	open, err := s.shiftOpen(ctx, branchID)
	if err != nil {
		return err
	}
	if !open {
		return pkgerrors.New(pkgerrors.CodeShiftClosed, "open a fiscal shift before selling gift cards")
	}
	return nil
}

func (s *service) OpenShift(ctx context.Context, branchID uuid.UUID, openedBy *uuid.UUID) (*models.FiscalShift, error) {
	if _, err := s.repo.FindOpenShift(ctx, branchID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "branch already has an open shift")
	} else if pkgErr := pkgerrors.As(err); pkgErr == nil || pkgErr.Code() != pkgerrors.CodeNotFound {
		return nil, err
	}

	shift := &models.FiscalShift{
		BranchID: branchID,
		OpenedBy: openedBy,
		OpenedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, shift); err != nil {
		return nil, err
	}
	s.invalidate(ctx, branchID)
	return shift, nil
}

func (s *service) CloseShift(ctx context.Context, branchID uuid.UUID) (*models.FiscalShift, error) {
	shift, err := s.repo.FindOpenShift(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Close(ctx, shift.ID); err != nil {
		return nil, err
	}
	closedAt := time.Now().UTC()
	shift.ClosedAt = &closedAt
	s.invalidate(ctx, branchID)
	return shift, nil
}

func (s *service) shiftOpen(ctx context.Context, branchID uuid.UUID) (bool, error) {
	_, err := s.repo.FindOpenShift(ctx, branchID)
	if err != nil {
		if pkgErr := pkgerrors.As(err); pkgErr != nil && pkgErr.Code() == pkgerrors.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) invalidate(ctx context.Context, branchID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.FiscalStatusKey(branchID.String())); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to invalidate fiscal status cache")
	}
}
