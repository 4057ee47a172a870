package remotemock

import (
	"context"
	"sync/atomic"

	"loan-service/internal/domain/remote"
)

var _ remote.Client = (*Client)(nil)

// Client is a function-backed remote.Client. Unset checks answer true and
// an unset decrement succeeds; every call is counted.
type Client struct {
	UserExistsFn     func(ctx context.Context, userID uint64) (bool, error)
	BookAvailableFn  func(ctx context.Context, bookID uint64) (bool, error)
	DecrementStockFn func(ctx context.Context, bookID uint64, attemptID string) error

	UserCalls      atomic.Int32
	BookCalls      atomic.Int32
	DecrementCalls atomic.Int32
}

func (m *Client) UserExists(ctx context.Context, userID uint64) (bool, error) {
	m.UserCalls.Add(1)
	if m.UserExistsFn != nil {
		return m.UserExistsFn(ctx, userID)
	}
	return true, nil
}

func (m *Client) BookAvailable(ctx context.Context, bookID uint64) (bool, error) {
	m.BookCalls.Add(1)
	if m.BookAvailableFn != nil {
		return m.BookAvailableFn(ctx, bookID)
	}
	return true, nil
}

func (m *Client) DecrementStock(ctx context.Context, bookID uint64, attemptID string) error {
	m.DecrementCalls.Add(1)
	if m.DecrementStockFn != nil {
		return m.DecrementStockFn(ctx, bookID, attemptID)
	}
	return nil
}
