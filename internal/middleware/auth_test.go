package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/book-market-backend/internal/auth"
	"github.com/shinyyama/book-market-backend/internal/handler"
	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/repository/memory"
	"github.com/shinyyama/book-market-backend/internal/reqctx"
	"github.com/shinyyama/book-market-backend/internal/service"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := bearerToken(tc.header)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("bearerToken(%q) = %q, %v; want %q, %v", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRequireAuth(t *testing.T) {
	repos := memory.NewStore().Set()
	authSvc := service.NewAuthService(repos.Users, auth.NewIssuer("test-secret", "book-market", time.Hour))
	sess, err := authSvc.Signup(context.Background(), "ann", "ann@example.com", "pw")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	e := echo.New()
	mw := NewAuthMiddleware(authSvc)
	var seenUID, ctxUID uint64
	h := mw.RequireAuth(func(c echo.Context) error {
		seenUID = c.Get("uid").(uint64)
		ctxUID = reqctx.UID(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + sess.Token, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"invalid", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			if err := h(e.NewContext(req, rec)); err != nil {
				t.Fatalf("handler: %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("status %d, want %d", rec.Code, tc.want)
			}
		})
	}
	if seenUID != sess.User.ID || ctxUID != sess.User.ID {
		t.Fatalf("uid = %d, ctx uid = %d, want %d", seenUID, ctxUID, sess.User.ID)
	}
}

// brokenAuth fails every lookup the way an unreachable user store would.
type brokenAuth struct {
	service.AuthService
}

func (brokenAuth) Authenticate(context.Context, string) (*auth.Claims, *model.User, error) {
	return nil, nil, errors.New("users: connection refused")
}

func TestRequireAuthStoreFailure(t *testing.T) {
	e := echo.New()
	called := false
	h := NewAuthMiddleware(brokenAuth{}).RequireAuth(func(c echo.Context) error {
		called = true
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if called {
		t.Fatalf("next handler should not run")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
	var body handler.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	if body.Error.Code != "internal_error" || body.Error.Message == "" {
		t.Fatalf("body = %+v", body)
	}
	if cause, _ := c.Get("handler_error").(string); cause != "users: connection refused" {
		t.Fatalf("handler_error = %q", cause)
	}
}
