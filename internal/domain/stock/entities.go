package stock

import "time"

type Outcome string

const (
	// recorded, inventory has not answered yet
	OutcomePending Outcome = "PENDING"
	// inventory rejected the decrement
	OutcomeFailed Outcome = "FAILED"
	// transport failure or 5xx; the decrement may have happened
	OutcomeUnknown Outcome = "UNKNOWN"
	// inventory acknowledged but the loan was not persisted
	OutcomeDecremented Outcome = "DECREMENTED"
	// loan persisted in the same transaction
	OutcomeCommitted Outcome = "COMMITTED"
)

// Unsettled outcomes are the ones where inventory and loans may disagree.
var Unsettled = []Outcome{OutcomePending, OutcomeUnknown, OutcomeDecremented}

// Attempt records one stock decrement issued while creating a loan.
type Attempt struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	AttemptID string    `gorm:"column:attempt_id;size:32;not null;uniqueIndex:ux_decrement_attempts_attempt_id"`
	UserID    uint64    `gorm:"column:user_id;not null"`
	BookID    uint64    `gorm:"column:book_id;not null;index"`
	Outcome   Outcome   `gorm:"column:outcome;size:16;not null;index:idx_decrement_attempts_outcome"`
	LoanID    *uint64   `gorm:"column:loan_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Attempt) TableName() string { return "decrement_attempts" }
