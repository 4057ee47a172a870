package loan

import "errors"

var (
	ErrMissingField          = errors.New("user_id and book_id are required")
	ErrUserNotFound          = errors.New("user not found")
	ErrBookUnavailable       = errors.New("book not found or unavailable")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrStockDecrementFailed  = errors.New("could not decrement book stock")
	ErrAlreadyReturned       = errors.New("loan already returned")
	ErrLoanNotFound          = errors.New("loan not found")
	ErrDuplicateAttempt      = errors.New("creation attempt already recorded")
)
