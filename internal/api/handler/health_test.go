package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Liveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthDependenciesHandler_Readiness(t *testing.T) {
	up := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })

	cases := []struct {
		name string
		deps map[string]Pinger
		code int
	}{
		{"all up", map[string]Pinger{"users": up}, http.StatusOK},
		{"one down", map[string]Pinger{"users": down}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

		if err := NewHealthDependenciesHandler(tc.deps, zerolog.Nop()).Readiness(c); err != nil {
			t.Fatalf("%s: handler error: %v", tc.name, err)
		}
		if rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.code, rec.Code)
		}
		resp := decode(t, rec)
		deps := resp["dependencies"].(map[string]any)
		if _, ok := deps["users"]; !ok {
			t.Fatalf("%s: missing dependency status: %+v", tc.name, resp)
		}
	}
}

func TestHealthDependenciesHandler_ReadinessHidesPingErrors(t *testing.T) {
	down := pingFunc(func(context.Context) error {
		return errors.New("dial tcp 10.0.0.7:27017: connection refused")
	})

	var logs bytes.Buffer
	h := NewHealthDependenciesHandler(map[string]Pinger{"users": down}, zerolog.New(&logs))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.7") {
		t.Fatalf("ping error leaked into response: %s", rec.Body.String())
	}
	resp := decode(t, rec)
	users := resp["dependencies"].(map[string]any)["users"].(map[string]any)
	if users["status"] != "unhealthy" || len(users) != 1 {
		t.Fatalf("expected bare unhealthy status, got %+v", users)
	}
	if !strings.Contains(logs.String(), "connection refused") || !strings.Contains(logs.String(), `"dependency":"users"`) {
		t.Fatalf("expected ping error in logs, got %s", logs.String())
	}
}
