package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	domain "loan-service/internal/domain/loan"
	"loan-service/internal/domain/remote"
	"loan-service/internal/domain/uow"
	"loan-service/internal/testutil/attemptmock"
	loanmock "loan-service/internal/testutil/loanmock"
	"loan-service/internal/testutil/remotemock"
	"loan-service/internal/testutil/uowmock"
	uc "loan-service/internal/usecase/loan"
)

// -------- helpers --------

type deps struct {
	loans  *loanmock.Repo
	remote *remotemock.Client
}

func newDeps() *deps {
	return &deps{loans: &loanmock.Repo{}, remote: &remotemock.Client{}}
}

// newServer wires the real routes over mocked storage and remote services.
func newServer(d *deps) *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	attempts := &attemptmock.Repo{}
	tx := uowmock.Passthrough(uow.Repos{Loans: d.loans, Attempts: attempts})
	usecase := uc.NewUsecase(d.loans, attempts, tx, d.remote)
	RegisterRoutes(e, NewHandler(nil), NewLoanHandler(usecase), nil)
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func serve(e *echo.Echo, method, path string, body *bytes.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	var req *stdhttp.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return er
}

func activeLoan(id uint64) *domain.Loan {
	return &domain.Loan{ID: id, UserID: 1, BookID: 2, LoanDate: time.Now().UTC(), Status: domain.StatusActive}
}

// -------- create --------

func TestCreateLoan_Success(t *testing.T) {
	d := newDeps()
	d.loans.CreateFn = func(_ context.Context, l *domain.Loan) error { l.ID = 10; return nil }

	rec := serve(newServer(d), stdhttp.MethodPost, "/api/v1/loans", mustJSON(map[string]any{"user_id": 1, "book_id": 2}), nil)
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
	var got uc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.ID != 10 || got.UserID != 1 || got.BookID != 2 || got.Status != "ACTIVE" || got.ReturnDate != nil {
		t.Fatalf("unexpected dto: %+v", got)
	}
	if !strings.Contains(rec.Body.String(), `"return_date":null`) {
		t.Fatalf("return_date should render as null: %s", rec.Body.String())
	}
}

func TestCreateLoan_BindError(t *testing.T) {
	d := newDeps()
	req := httptest.NewRequest(stdhttp.MethodPost, "/api/v1/loans", strings.NewReader(`{"user_id":`)) // broken JSON
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	newServer(d).ServeHTTP(rec, req)

	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if er := decodeErr(t, rec); er.Error != "invalid body" {
		t.Fatalf("error = %q, want %q", er.Error, "invalid body")
	}
	if d.remote.UserCalls.Load() != 0 {
		t.Fatalf("remote must not be called")
	}
}

func TestCreateLoan_ValidationError(t *testing.T) {
	d := newDeps()
	rec := serve(newServer(d), stdhttp.MethodPost, "/api/v1/loans",
		mustJSON(map[string]any{"user_id": 0, "book_id": 2}),
		map[string]string{"Idempotency-Key": "nope"})

	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	er := decodeErr(t, rec)
	if er.Error != "validation failed" {
		t.Fatalf("error = %q, want %q", er.Error, "validation failed")
	}
	if !containsFieldMsg(er.Details, "user_id", "greater than 0") {
		t.Fatalf("missing user_id detail: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "IdempotencyKey", "UUID or 32-char hex") {
		t.Fatalf("missing key detail: %+v", er.Details)
	}
}

func TestCreateLoan_MissingField(t *testing.T) {
	d := newDeps()
	rec := serve(newServer(d), stdhttp.MethodPost, "/api/v1/loans", mustJSON(map[string]any{"book_id": 1}), nil)

	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if n := d.remote.UserCalls.Load() + d.remote.BookCalls.Load() + d.remote.DecrementCalls.Load(); n != 0 {
		t.Fatalf("remote calls = %d, want 0", n)
	}
}

func TestCreateLoan_RemoteFailures(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*remotemock.Client)
		want  int
	}{
		{"user absent", func(m *remotemock.Client) {
			m.UserExistsFn = func(context.Context, uint64) (bool, error) { return false, nil }
		}, stdhttp.StatusUnprocessableEntity},
		{"user unreachable", func(m *remotemock.Client) {
			m.UserExistsFn = func(context.Context, uint64) (bool, error) { return false, remote.ErrUnavailable }
		}, stdhttp.StatusServiceUnavailable},
		{"book absent", func(m *remotemock.Client) {
			m.BookAvailableFn = func(context.Context, uint64) (bool, error) { return false, nil }
		}, stdhttp.StatusUnprocessableEntity},
		{"decrement rejected", func(m *remotemock.Client) {
			m.DecrementStockFn = func(context.Context, uint64, string) error { return remote.ErrRejected }
		}, stdhttp.StatusBadGateway},
		{"decrement unreachable", func(m *remotemock.Client) {
			m.DecrementStockFn = func(context.Context, uint64, string) error { return remote.ErrUnavailable }
		}, stdhttp.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newDeps()
			tc.setup(d.remote)
			d.loans.CreateFn = func(context.Context, *domain.Loan) error {
				t.Fatalf("store must not be called")
				return nil
			}
			rec := serve(newServer(d), stdhttp.MethodPost, "/api/v1/loans", mustJSON(map[string]any{"user_id": 1, "book_id": 2}), nil)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d; body=%s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestCreateLoan_StoreFailureIs500(t *testing.T) {
	d := newDeps()
	d.loans.CreateFn = func(context.Context, *domain.Loan) error { return errors.New("db down") }

	rec := serve(newServer(d), stdhttp.MethodPost, "/api/v1/loans", mustJSON(map[string]any{"user_id": 1, "book_id": 2}), nil)
	if rec.Code != stdhttp.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if er := decodeErr(t, rec); er.Error != "internal error" {
		t.Fatalf("internal errors must not leak: %q", er.Error)
	}
}

// -------- reads --------

func TestGetLoan(t *testing.T) {
	d := newDeps()
	d.loans.GetByIDFn = func(_ context.Context, id uint64) (*domain.Loan, error) {
		if id != 7 {
			return nil, gorm.ErrRecordNotFound
		}
		return activeLoan(7), nil
	}
	e := newServer(d)

	rec := serve(e, stdhttp.MethodGet, "/api/v1/loans/7", nil, nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var dto uc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil || dto.ID != 7 {
		t.Fatalf("unexpected body: %s (%v)", rec.Body.String(), err)
	}

	if rec := serve(e, stdhttp.MethodGet, "/api/v1/loans/8", nil, nil); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("missing loan: status = %d, want 404", rec.Code)
	}
	if rec := serve(e, stdhttp.MethodGet, "/api/v1/loans/abc", nil, nil); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("bad id: status = %d, want 400", rec.Code)
	}
}

func TestListLoans(t *testing.T) {
	d := newDeps()
	d.loans.ListFn = func(context.Context) ([]domain.Loan, error) { return []domain.Loan{}, nil }
	d.loans.ListByUserIDFn = func(_ context.Context, userID uint64) ([]domain.Loan, error) {
		return []domain.Loan{*activeLoan(1), *activeLoan(2)}, nil
	}
	e := newServer(d)

	rec := serve(e, stdhttp.MethodGet, "/api/v1/loans", nil, nil)
	if rec.Code != stdhttp.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(e, stdhttp.MethodGet, "/api/v1/loans/user/1", nil, nil)
	var got []uc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || len(got) != 2 {
		t.Fatalf("list by user: %d %s", rec.Code, rec.Body.String())
	}
}

// -------- return / delete --------

func TestReturnLoan(t *testing.T) {
	d := newDeps()
	returned := time.Now().UTC()
	d.loans.GetByIDForUpdateFn = func(_ context.Context, id uint64) (*domain.Loan, error) {
		switch id {
		case 1:
			return activeLoan(1), nil
		case 2:
			l := activeLoan(2)
			l.Status, l.ReturnDate = domain.StatusReturned, &returned
			return l, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	e := newServer(d)

	rec := serve(e, stdhttp.MethodPatch, "/api/v1/loans/1/return", nil, nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("return active: status = %d", rec.Code)
	}
	var dto uc.LoanDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &dto)
	if dto.Status != "RETURNED" || dto.ReturnDate == nil {
		t.Fatalf("unexpected dto: %+v", dto)
	}

	if rec := serve(e, stdhttp.MethodPatch, "/api/v1/loans/2/return", nil, nil); rec.Code != stdhttp.StatusConflict {
		t.Fatalf("return twice: status = %d, want 409", rec.Code)
	}
	if rec := serve(e, stdhttp.MethodPatch, "/api/v1/loans/3/return", nil, nil); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("return missing: status = %d, want 404", rec.Code)
	}
}

func TestDeleteLoan(t *testing.T) {
	d := newDeps()
	d.loans.DeleteFn = func(_ context.Context, id uint64) error {
		if id == 1 {
			return nil
		}
		return gorm.ErrRecordNotFound
	}
	e := newServer(d)

	if rec := serve(e, stdhttp.MethodDelete, "/api/v1/loans/1", nil, nil); rec.Code != stdhttp.StatusNoContent {
		t.Fatalf("delete: status = %d, want 204", rec.Code)
	}
	if rec := serve(e, stdhttp.MethodDelete, "/api/v1/loans/2", nil, nil); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("delete missing: status = %d, want 404", rec.Code)
	}
	if rec := serve(e, stdhttp.MethodDelete, "/api/v1/loans/0", nil, nil); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("delete bad id: status = %d, want 400", rec.Code)
	}
}

func TestHealthRoute(t *testing.T) {
	if rec := serve(newServer(newDeps()), stdhttp.MethodGet, "/health", nil, nil); rec.Code != stdhttp.StatusOK {
		t.Fatalf("health: status = %d", rec.Code)
	}
}
