package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"loan-service/internal/domain/remote"
	"loan-service/internal/logger"
	"loan-service/internal/metrics"
)

const (
	serviceUser = "user"
	serviceBook = "book"

	headerIdempotencyKey = "Idempotency-Key"
)

// Paths are resty path templates; {id} is substituted per call.
type Paths struct {
	User      string
	Book      string
	Decrement string
}

var DefaultPaths = Paths{
	User:      "/api/v1/usuarios/{id}",
	Book:      "/api/v1/libros/{id}",
	Decrement: "/api/v1/libros/decrementar-stock/{id}",
}

type Option func(*HTTPClient)

func WithPaths(p Paths) Option { return func(c *HTTPClient) { c.paths = p } }

func WithMetrics(m *metrics.Metrics) Option { return func(c *HTTPClient) { c.metrics = m } }

// HTTPClient talks to the user directory and the book inventory.
// One attempt per call; resty retries stay disabled.
type HTTPClient struct {
	users   *resty.Client
	books   *resty.Client
	paths   Paths
	metrics *metrics.Metrics
}

var _ remote.Client = (*HTTPClient)(nil)

func NewHTTPClient(userBaseURL, bookBaseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		users: resty.New().SetBaseURL(userBaseURL).SetHeader("Accept", "application/json"),
		books: resty.New().SetBaseURL(bookBaseURL).SetHeader("Accept", "application/json"),
		paths: DefaultPaths,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) UserExists(ctx context.Context, userID uint64) (bool, error) {
	resp, err := c.get(ctx, c.users, serviceUser, "exists", c.paths.User, userID)
	if err != nil {
		return false, err
	}
	return resp.IsSuccess(), nil
}

type bookBody struct {
	Stock           *float64 `json:"stock"`
	StockDisponible *float64 `json:"stock_disponible"`
}

// BookAvailable reports whether the book exists and, when the body says so, has stock left.
func (c *HTTPClient) BookAvailable(ctx context.Context, bookID uint64) (bool, error) {
	resp, err := c.get(ctx, c.books, serviceBook, "available", c.paths.Book, bookID)
	if err != nil {
		return false, err
	}
	if !resp.IsSuccess() {
		return false, nil
	}

	var b bookBody
	if err := json.Unmarshal(resp.Body(), &b); err != nil {
		// existence is all a non-JSON body can tell us
		return true, nil
	}
	switch {
	case b.Stock != nil:
		return *b.Stock > 0, nil
	case b.StockDisponible != nil:
		return *b.StockDisponible > 0, nil
	}
	return true, nil
}

func (c *HTTPClient) DecrementStock(ctx context.Context, bookID uint64, attemptID string) error {
	const op = "decrement"
	logger.ExternalServiceCall(ctx, serviceBook, op, "book_id", bookID, "attempt_id", attemptID)

	resp, err := c.books.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatUint(bookID, 10)).
		SetHeader(headerIdempotencyKey, attemptID).
		Put(c.paths.Decrement)
	if err != nil {
		err = fmt.Errorf("%w: %v", remote.ErrUnavailable, err)
		c.finish(ctx, serviceBook, op, "unavailable", err, "book_id", bookID)
		return err
	}

	status := resp.StatusCode()
	switch {
	case resp.IsSuccess():
		c.finish(ctx, serviceBook, op, "ok", nil, "book_id", bookID, "status", status)
		return nil
	case status >= http.StatusInternalServerError:
		err = fmt.Errorf("%w: status %d", remote.ErrUnavailable, status)
		c.finish(ctx, serviceBook, op, "unavailable", err, "book_id", bookID)
		return err
	default:
		err = fmt.Errorf("%w: status %d", remote.ErrRejected, status)
		c.finish(ctx, serviceBook, op, "rejected", err, "book_id", bookID)
		return err
	}
}

// get issues a read. 5xx and transport failures come back as ErrUnavailable;
// any other response is returned for the caller to judge.
func (c *HTTPClient) get(ctx context.Context, rc *resty.Client, service, op, path string, id uint64) (*resty.Response, error) {
	logger.ExternalServiceCall(ctx, service, op, "id", id)

	resp, err := rc.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatUint(id, 10)).
		Get(path)
	if err != nil {
		err = fmt.Errorf("%w: %v", remote.ErrUnavailable, err)
		c.finish(ctx, service, op, "unavailable", err, "id", id)
		return nil, err
	}

	status := resp.StatusCode()
	switch {
	case status >= http.StatusInternalServerError:
		err = fmt.Errorf("%w: status %d", remote.ErrUnavailable, status)
		c.finish(ctx, service, op, "unavailable", err, "id", id)
		return nil, err
	case resp.IsSuccess():
		c.finish(ctx, service, op, "ok", nil, "id", id, "status", status)
	default:
		c.finish(ctx, service, op, "absent", nil, "id", id, "status", status)
	}
	return resp, nil
}

func (c *HTTPClient) finish(ctx context.Context, service, op, result string, err error, args ...any) {
	c.metrics.ObserveRemoteCall(service, op, result)
	logger.ExternalServiceResult(ctx, service, op, err, args...)
}
