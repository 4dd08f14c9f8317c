package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shinyyama/book-market-backend/internal/model"
)

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer("secret", "book-market", time.Hour)
	u := &model.User{ID: 7, Email: "a@x.io", Role: model.RoleSeller, TokenVersion: 3}

	tok, err := iss.Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := iss.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.ID != 7 || c.Email != "a@x.io" || c.Role != model.RoleSeller || c.Version != 3 {
		t.Fatalf("unexpected claims: %+v", c)
	}
	if c.ExpiresAt.Sub(c.IssuedAt.Time) != time.Hour {
		t.Fatalf("ttl = %v", c.ExpiresAt.Sub(c.IssuedAt.Time))
	}
}

func TestParseRejects(t *testing.T) {
	iss := NewIssuer("secret", "book-market", time.Hour)
	u := &model.User{ID: 1, Email: "a@x.io", Role: model.RoleUser}

	good, _ := iss.Issue(u)
	wrongSecret, _ := NewIssuer("other", "book-market", time.Hour).Issue(u)
	wrongIssuer, _ := NewIssuer("secret", "someone-else", time.Hour).Issue(u)

	expiredIss := NewIssuer("secret", "book-market", time.Hour)
	expiredIss.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	expired, _ := expiredIss.Issue(u)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ID: 1, RegisteredClaims: jwt.RegisteredClaims{Issuer: "book-market"}})
	noneTok, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := map[string]string{
		"garbage":      "not-a-token",
		"tampered":     good + "x",
		"wrong secret": wrongSecret,
		"wrong issuer": wrongIssuer,
		"expired":      expired,
		"alg none":     noneTok,
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := iss.Parse(tok); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h == "hunter2" {
		t.Fatalf("hash must not equal the password")
	}
	if !CheckPassword("hunter2", h) {
		t.Fatalf("expected password to match")
	}
	if CheckPassword("hunter3", h) {
		t.Fatalf("expected mismatch")
	}
}
