package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/retailware/tillpoint-backend/pkg/logger"
)

type overdueSweeper interface {
	SweepOverdue(ctx context.Context, now time.Time) (int64, error)
}

// CreditOverdueJobParams configure the overdue credit sweep.
type CreditOverdueJobParams struct {
	Logger  *logger.Logger
	Credits overdueSweeper
}

// NewCreditOverdueJob flags unpaid customer credits past their due date.
func NewCreditOverdueJob(params CreditOverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Credits == nil {
		return nil, fmt.Errorf("credit service required")
	}
	return &creditOverdueJob{
		logg:    params.Logger,
		credits: params.Credits,
		now:     time.Now,
	}, nil
}

type creditOverdueJob struct {
	logg    *logger.Logger
	credits overdueSweeper
	now     func() time.Time
}

func (j *creditOverdueJob) Name() string { return "credit-overdue" }

func (j *creditOverdueJob) Run(ctx context.Context) error {
	flagged, err := j.credits.SweepOverdue(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("credit overdue sweep: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "credits_flagged", flagged), "credit overdue sweep complete")
	return nil
}
