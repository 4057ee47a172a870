// Package reconcile reports stock decrements that never produced a loan.
// It only observes: nothing is called on inventory and no row is changed.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"loan-service/internal/domain/stock"
	"loan-service/internal/logger"
	"loan-service/internal/metrics"
)

type Report struct {
	CheckedAt time.Time
	Cutoff    time.Time
	Unsettled []stock.Attempt
}

type Usecase struct {
	attempts stock.Repository
	grace    time.Duration
	now      func() time.Time
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func NewUsecase(attempts stock.Repository, grace time.Duration, m *metrics.Metrics) *Usecase {
	return &Usecase{
		attempts: attempts,
		grace:    grace,
		now:      time.Now,
		metrics:  m,
		log:      logger.WithComponent("reconcile"),
	}
}

// Run lists attempts older than the grace period whose outcome is still open.
func (u *Usecase) Run(ctx context.Context) (Report, error) {
	now := u.now().UTC()
	rep := Report{CheckedAt: now, Cutoff: now.Add(-u.grace)}

	list, err := u.attempts.ListUnsettled(ctx, rep.Cutoff)
	if err != nil {
		u.log.ErrorContext(ctx, "list unsettled attempts", "error", err)
		return rep, err
	}
	rep.Unsettled = list

	for _, a := range list {
		u.log.WarnContext(ctx, "unsettled stock decrement",
			"attempt_id", a.AttemptID,
			"outcome", a.Outcome,
			"user_id", a.UserID,
			"book_id", a.BookID,
			"age", now.Sub(a.CreatedAt).Round(time.Second).String(),
		)
	}
	u.metrics.SetUnsettledDecrements(len(list))
	if len(list) > 0 {
		u.log.InfoContext(ctx, "reconciliation finished", "unsettled", len(list))
	}
	return rep, nil
}
