package loan

import (
	"time"

	domain "loan-service/internal/domain/loan"
)

// CreateLoanInput carries the creation request. Nil ids mean the field was absent.
type CreateLoanInput struct {
	UserID         *uint64 `json:"user_id"`
	BookID         *uint64 `json:"book_id"`
	IdempotencyKey string  `json:"-"`
}

type LoanDTO struct {
	ID         uint64     `json:"id"`
	UserID     uint64     `json:"user_id"`
	BookID     uint64     `json:"book_id"`
	LoanDate   time.Time  `json:"loan_date"`
	ReturnDate *time.Time `json:"return_date"`
	Status     string     `json:"status"`
}

func toDTO(l *domain.Loan) *LoanDTO {
	return &LoanDTO{
		ID:         l.ID,
		UserID:     l.UserID,
		BookID:     l.BookID,
		LoanDate:   l.LoanDate,
		ReturnDate: l.ReturnDate,
		Status:     string(l.Status),
	}
}

func toDTOs(ls []domain.Loan) []LoanDTO {
	out := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		out = append(out, *toDTO(&ls[i]))
	}
	return out
}
