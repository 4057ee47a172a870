package attemptmock

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"loan-service/internal/domain/stock"
)

var _ stock.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies stock.Repository.
// With no functions set it behaves as an empty table and records every
// outcome written through Create/Save.
type Repo struct {
	CreateFn         func(ctx context.Context, a *stock.Attempt) error
	GetByAttemptIDFn func(ctx context.Context, attemptID string) (*stock.Attempt, error)
	SaveFn           func(ctx context.Context, a *stock.Attempt) error
	ListUnsettledFn  func(ctx context.Context, before time.Time) ([]stock.Attempt, error)

	mu       sync.Mutex
	outcomes []stock.Outcome
}

func (m *Repo) record(o stock.Outcome) {
	m.mu.Lock()
	m.outcomes = append(m.outcomes, o)
	m.mu.Unlock()
}

// Outcomes returns the outcomes written so far, in order.
func (m *Repo) Outcomes() []stock.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stock.Outcome(nil), m.outcomes...)
}

func (m *Repo) Create(ctx context.Context, a *stock.Attempt) error {
	m.record(a.Outcome)
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByAttemptID(ctx context.Context, attemptID string) (*stock.Attempt, error) {
	if m.GetByAttemptIDFn != nil {
		return m.GetByAttemptIDFn(ctx, attemptID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) Save(ctx context.Context, a *stock.Attempt) error {
	m.record(a.Outcome)
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) ListUnsettled(ctx context.Context, before time.Time) ([]stock.Attempt, error) {
	if m.ListUnsettledFn != nil {
		return m.ListUnsettledFn(ctx, before)
	}
	return []stock.Attempt{}, nil
}
