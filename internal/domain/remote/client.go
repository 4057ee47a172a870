// Package remote describes the user directory and book inventory services
// the loan workflow depends on.
package remote

import (
	"context"
	"errors"
)

var (
	// transport failure or 5xx: the outcome on the other side is unknown
	ErrUnavailable = errors.New("remote service unavailable")
	// the service answered and refused the request
	ErrRejected = errors.New("remote service rejected request")
)

// Client reports absence as (false, nil) and unreachability as ErrUnavailable.
type Client interface {
	UserExists(ctx context.Context, userID uint64) (bool, error)
	BookAvailable(ctx context.Context, bookID uint64) (bool, error)
	// attemptID is forwarded as the Idempotency-Key header.
	DecrementStock(ctx context.Context, bookID uint64, attemptID string) error
}
