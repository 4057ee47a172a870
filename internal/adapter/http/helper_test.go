package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

// ---- helpers ----

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestParseID(t *testing.T) {
	e := echo.New()
	cases := []struct {
		raw  string
		want uint64
		ok   bool
	}{
		{"1", 1, true},
		{"18446744073709551615", 18446744073709551615, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		c := e.NewContext(httptest.NewRequest(stdhttp.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("loan_id")
		c.SetParamValues(tc.raw)
		got, ok := parseID(c, "loan_id")
		if got != tc.want || ok != tc.ok {
			t.Fatalf("parseID(%q) = %d,%v want %d,%v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}
