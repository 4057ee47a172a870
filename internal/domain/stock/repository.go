package stock

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a *Attempt) error
	GetByAttemptID(ctx context.Context, attemptID string) (*Attempt, error)
	Save(ctx context.Context, a *Attempt) error
	// Unsettled attempts created before the cutoff, oldest first.
	ListUnsettled(ctx context.Context, before time.Time) ([]Attempt, error)
}
