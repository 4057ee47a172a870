package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"loan-service/internal/domain/loan"
	"loan-service/internal/domain/remote"
	"loan-service/internal/domain/stock"
	"loan-service/internal/domain/uow"
	"loan-service/internal/logger"
	"loan-service/internal/metrics"
	"loan-service/pkg/id"
)

// commitTimeout bounds the writes that follow a sent decrement.
const commitTimeout = 10 * time.Second

type Usecase struct {
	loans    loan.Repository
	attempts stock.Repository
	tx       uow.UnitOfWork
	remote   remote.Client

	now     func() time.Time
	metrics *metrics.Metrics
	log     *slog.Logger
}

type Option func(*Usecase)

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func WithMetrics(m *metrics.Metrics) Option { return func(u *Usecase) { u.metrics = m } }

func NewUsecase(loans loan.Repository, attempts stock.Repository, tx uow.UnitOfWork, rc remote.Client, opts ...Option) *Usecase {
	u := &Usecase{
		loans:    loans,
		attempts: attempts,
		tx:       tx,
		remote:   rc,
		now:      time.Now,
		log:      logger.WithComponent("loan"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Create runs the creation pipeline: validate, check user, check book,
// record the attempt, decrement stock, commit. Each step stops the
// pipeline on failure; a sent decrement is never compensated.
func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (dto *LoanDTO, err error) {
	defer func() { u.metrics.ObserveCreate(createOutcome(err)) }()

	if in.UserID == nil || in.BookID == nil {
		return nil, loan.ErrMissingField
	}
	userID, bookID := *in.UserID, *in.BookID

	attemptID := id.NewID32()
	if in.IdempotencyKey != "" {
		if attemptID, err = id.Normalize(in.IdempotencyKey); err != nil {
			return nil, err
		}
	}

	ok, err := u.remote.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: user %d: %v", loan.ErrUserNotFound, loan.ErrDependencyUnavailable, userID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: user %d", loan.ErrUserNotFound, userID)
	}

	ok, err = u.remote.BookAvailable(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: book %d: %v", loan.ErrBookUnavailable, loan.ErrDependencyUnavailable, bookID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: book %d", loan.ErrBookUnavailable, bookID)
	}

	att, err := u.beginAttempt(ctx, attemptID, userID, bookID)
	if err != nil {
		return nil, err
	}

	// the decrement and everything after it outlive the request
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()

	if err := u.remote.DecrementStock(cctx, bookID, att.AttemptID); err != nil {
		return nil, u.failAttempt(cctx, att, err)
	}

	l := loan.New(userID, bookID, att.AttemptID, u.now())
	err = u.tx.WithinTx(cctx, func(r uow.Repos) error {
		if err := r.Loans.Create(cctx, l); err != nil {
			return err
		}
		att.Outcome = stock.OutcomeCommitted
		att.LoanID = &l.ID
		return r.Attempts.Save(cctx, att)
	})
	if err != nil {
		att.Outcome = stock.OutcomeDecremented
		att.LoanID = nil
		if serr := u.attempts.Save(cctx, att); serr != nil {
			u.log.ErrorContext(cctx, "record decremented attempt", "attempt_id", att.AttemptID, "error", serr)
		}
		u.log.ErrorContext(cctx, "stock decremented but loan not persisted",
			"attempt_id", att.AttemptID, "user_id", userID, "book_id", bookID, "error", err)
		return nil, err
	}

	u.log.InfoContext(ctx, "loan created", "loan_id", l.ID, "user_id", userID, "book_id", bookID, "attempt_id", att.AttemptID)
	return toDTO(l), nil
}

// beginAttempt records the attempt token as PENDING, refusing one already used.
func (u *Usecase) beginAttempt(ctx context.Context, attemptID string, userID, bookID uint64) (*stock.Attempt, error) {
	_, err := u.attempts.GetByAttemptID(ctx, attemptID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", loan.ErrDuplicateAttempt, attemptID)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	att := &stock.Attempt{
		AttemptID: attemptID,
		UserID:    userID,
		BookID:    bookID,
		Outcome:   stock.OutcomePending,
	}
	if err := u.attempts.Create(ctx, att); err != nil {
		// a concurrent create with the same token won the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", loan.ErrDuplicateAttempt, attemptID)
		}
		return nil, err
	}
	return att, nil
}

// failAttempt records why the decrement did not go through and builds the caller's error.
func (u *Usecase) failAttempt(ctx context.Context, att *stock.Attempt, cause error) error {
	var out error
	if errors.Is(cause, remote.ErrRejected) {
		att.Outcome = stock.OutcomeFailed
		out = fmt.Errorf("%w: book %d: %v", loan.ErrStockDecrementFailed, att.BookID, cause)
	} else {
		att.Outcome = stock.OutcomeUnknown
		out = fmt.Errorf("%w: %w: book %d: %v", loan.ErrStockDecrementFailed, loan.ErrDependencyUnavailable, att.BookID, cause)
	}
	if err := u.attempts.Save(ctx, att); err != nil {
		u.log.ErrorContext(ctx, "record failed attempt", "attempt_id", att.AttemptID, "outcome", att.Outcome, "error", err)
	}
	return out
}

// Return closes an ACTIVE loan. The row is locked for the whole transaction.
func (u *Usecase) Return(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	var out *loan.Loan
	err := u.tx.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := l.MarkReturned(u.now()); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loan.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDTO(out), nil
}

func (u *Usecase) Delete(ctx context.Context, loanID uint64) error {
	err := u.loans.Delete(ctx, loanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return loan.ErrLoanNotFound
	}
	return err
}

func (u *Usecase) Get(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	l, err := u.loans.GetByID(ctx, loanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loan.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

func (u *Usecase) ListByUser(ctx context.Context, userID uint64) ([]LoanDTO, error) {
	ls, err := u.loans.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDTOs(ls), nil
}

func (u *Usecase) List(ctx context.Context) ([]LoanDTO, error) {
	ls, err := u.loans.List(ctx)
	if err != nil {
		return nil, err
	}
	return toDTOs(ls), nil
}

func createOutcome(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, loan.ErrMissingField), errors.Is(err, id.ErrInvalidKey):
		return "invalid"
	case errors.Is(err, loan.ErrDependencyUnavailable):
		return "dependency_unavailable"
	case errors.Is(err, loan.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, loan.ErrBookUnavailable):
		return "book_unavailable"
	case errors.Is(err, loan.ErrDuplicateAttempt):
		return "duplicate"
	case errors.Is(err, loan.ErrStockDecrementFailed):
		return "stock_failed"
	default:
		return "error"
	}
}
