package service

import (
	"context"
	"testing"
	"time"

	"github.com/shinyyama/book-market-backend/internal/auth"
	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/repository"
	"github.com/shinyyama/book-market-backend/internal/repository/memory"
)

type fixture struct {
	repos repository.Set
	auth  AuthService
	users UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewStore().Set()
	authSvc := NewAuthService(repos.Users, auth.NewIssuer("test-secret", "book-market", time.Hour))
	return &fixture{
		repos: repos,
		auth:  authSvc,
		users: NewUserService(repos.Users, repos.Books, repos.Wishlist, authSvc, nil, nil),
	}
}

func (f *fixture) signup(t *testing.T, name string) *model.User {
	t.Helper()
	sess, err := f.auth.Signup(context.Background(), name, name+"@example.com", "pw-"+name)
	if err != nil {
		t.Fatalf("signup %s: %v", name, err)
	}
	return sess.User
}

func (f *fixture) seller(t *testing.T, name string) *model.User {
	t.Helper()
	u := f.signup(t, name)
	sess, err := f.users.BecomeSeller(context.Background(), u.ID, "@"+name, "City")
	if err != nil {
		t.Fatalf("become seller %s: %v", name, err)
	}
	return sess.User
}

func validBook(category string) CreateBookInput {
	return CreateBookInput{
		Name:        "Go in Action",
		Description: "Good condition",
		Price:       10,
		MRP:         30,
		Edition:     "1st",
		Publisher:   "Manning",
		Category:    category,
		BookFront:   "https://img/front",
		BookBack:    "https://img/back",
		BookIndex:   "https://img/index",
		BookMiddle:  "https://img/middle",
	}
}
