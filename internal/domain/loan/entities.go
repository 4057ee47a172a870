package loan

import (
	"time"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusReturned Status = "RETURNED"
)

type Loan struct {
	ID         uint64     `gorm:"primaryKey;column:id;autoIncrement" json:"id"`
	UserID     uint64     `gorm:"column:user_id;not null;index:idx_loans_user" json:"user_id"`
	BookID     uint64     `gorm:"column:book_id;not null;index:idx_loans_book" json:"book_id"`
	LoanDate   time.Time  `gorm:"column:loan_date;not null" json:"loan_date"`
	ReturnDate *time.Time `gorm:"column:return_date" json:"return_date"`
	Status     Status     `gorm:"column:status;size:16;not null;default:'ACTIVE'" json:"status"`
	// Creation attempt token (32-char lowercase hex); links the loan to its stock decrement.
	AttemptID string    `gorm:"column:attempt_id;size:32;uniqueIndex:ux_loans_attempt_id" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// New builds an ACTIVE loan dated at now. The store assigns the ID.
func New(userID, bookID uint64, attemptID string, now time.Time) *Loan {
	return &Loan{
		UserID:    userID,
		BookID:    bookID,
		LoanDate:  now.UTC(),
		Status:    StatusActive,
		AttemptID: attemptID,
	}
}

func (l *Loan) IsReturned() bool { return l.Status == StatusReturned }

// MarkReturned moves ACTIVE -> RETURNED. RETURNED is terminal.
func (l *Loan) MarkReturned(at time.Time) error {
	if l.IsReturned() {
		return ErrAlreadyReturned
	}
	t := at.UTC()
	l.Status = StatusReturned
	l.ReturnDate = &t
	return nil
}
