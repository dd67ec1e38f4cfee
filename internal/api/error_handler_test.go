package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jwtdemo/auth-system/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.NewValidationError("Invalid email format"), http.StatusBadRequest, "Invalid email format"},
		{domain.ErrDuplicateEmail, http.StatusBadRequest, "User already exists with this email"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
		{fmt.Errorf("wrapped: %w", domain.ErrInvalidToken), http.StatusUnauthorized, "Invalid or expired token"},
		{domain.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{echo.NewHTTPError(http.StatusUnauthorized, "Access token required"), http.StatusUnauthorized, "Access token required"},
	}

	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if body.Message != tc.msg {
			t.Fatalf("%v: expected %q, got %q", tc.err, tc.msg, body.Message)
		}
	}
}

func TestHTTPErrorHandler_InternalErrorsAreNotLeaked(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/register", nil), rec)

	NewHTTPErrorHandler(zerolog.New(&logs))(errors.New("mongo: connection reset by peer"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "connection reset by peer") {
		t.Fatalf("expected cause to be logged, got %q", logs.String())
	}
}
