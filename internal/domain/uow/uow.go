package uow

import (
	"context"

	"loan-service/internal/domain/loan"
	"loan-service/internal/domain/stock"
)

type Repos struct {
	Loans    loan.Repository
	Attempts stock.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}
