package loan

import "context"

// Repository misses are reported as gorm.ErrRecordNotFound.
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	// Locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	ListByUserID(ctx context.Context, userID uint64) ([]Loan, error)
	List(ctx context.Context) ([]Loan, error)
	Save(ctx context.Context, l *Loan) error
	Delete(ctx context.Context, id uint64) error
}
