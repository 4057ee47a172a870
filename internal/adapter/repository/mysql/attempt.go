package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"loan-service/internal/domain/stock"
)

type AttemptRepository struct{ db *gorm.DB }

func NewAttemptRepository(db *gorm.DB) *AttemptRepository { return &AttemptRepository{db: db} }

func (r *AttemptRepository) Create(ctx context.Context, a *stock.Attempt) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AttemptRepository) Save(ctx context.Context, a *stock.Attempt) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AttemptRepository) GetByAttemptID(ctx context.Context, attemptID string) (*stock.Attempt, error) {
	var out stock.Attempt
	res := r.db.WithContext(ctx).Where("attempt_id = ?", attemptID).First(&out)
	return &out, res.Error
}

func (r *AttemptRepository) ListUnsettled(ctx context.Context, before time.Time) ([]stock.Attempt, error) {
	out := []stock.Attempt{}
	res := r.db.WithContext(ctx).
		Where("outcome IN ? AND created_at < ?", stock.Unsettled, before).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}
