package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"loan-service/internal/logger"
	"loan-service/internal/usecase/reconcile"
)

// Reconciler is the job run on every tick.
type Reconciler interface {
	Run(ctx context.Context) (reconcile.Report, error)
}

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	timeout    time.Duration
}

// New registers the reconciliation job on spec (six fields, seconds first).
func New(spec string, r Reconciler) (*Scheduler, error) {
	// UTC with seconds precision; a slow run is skipped rather than stacked
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{cron: c, reconciler: r, timeout: time.Minute}
	if _, err := s.cron.AddFunc(spec, s.RunReconcile); err != nil {
		return nil, fmt.Errorf("register reconcile job %q: %w", spec, err)
	}
	logger.Info("Cron jobs registered", "reconcile", spec)
	return s, nil
}

// RunReconcile executes one reconciliation pass.
func (s *Scheduler) RunReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	rep, err := s.reconciler.Run(ctx)
	if err != nil {
		logger.Error("Reconcile job failed", "error", err)
		return
	}
	logger.Debug("Reconcile job done", "unsettled", len(rep.Unsettled), "cutoff", rep.Cutoff)
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Cron scheduler started")
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }
