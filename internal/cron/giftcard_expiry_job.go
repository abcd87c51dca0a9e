package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/retailware/tillpoint-backend/pkg/logger"
)

type giftCardExpirer interface {
	ExpireSweep(ctx context.Context, now time.Time) (int, error)
}

// GiftCardExpiryJobParams configure the gift card expiry sweep.
type GiftCardExpiryJobParams struct {
	Logger    *logger.Logger
	GiftCards giftCardExpirer
}

// NewGiftCardExpiryJob drains and expires gift cards past their expiry date.
func NewGiftCardExpiryJob(params GiftCardExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.GiftCards == nil {
		return nil, fmt.Errorf("gift card service required")
	}
	return &giftCardExpiryJob{
		logg:  params.Logger,
		cards: params.GiftCards,
		now:   time.Now,
	}, nil
}

type giftCardExpiryJob struct {
	logg  *logger.Logger
	cards giftCardExpirer
	now   func() time.Time
}

func (j *giftCardExpiryJob) Name() string { return "giftcard-expiry" }

func (j *giftCardExpiryJob) Run(ctx context.Context) error {
	expired, err := j.cards.ExpireSweep(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("gift card expiry sweep: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "cards_expired", expired), "gift card expiry sweep complete")
	return nil
}
