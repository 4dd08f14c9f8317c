package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shinyyama/book-market-backend/internal/auth"
	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/repository"
	"gorm.io/gorm"
)

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrInvalidInput)

type Session struct {
	Token string
	User  *model.User
}

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	// Authenticate resolves a bearer token to its claims and the stored user.
	// Claims issued before the user's last token version bump are rejected.
	Authenticate(ctx context.Context, token string) (*auth.Claims, *model.User, error)
	Logout(ctx context.Context, userID uint64) error
	IssueFor(u *model.User) (string, error)
}

type authService struct {
	userRepo repository.UserRepository
	issuer   *auth.Issuer
}

func NewAuthService(userRepo repository.UserRepository, issuer *auth.Issuer) AuthService {
	return &authService{userRepo: userRepo, issuer: issuer}
}

func (s *authService) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, invalid("name, email and password are required")
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: user already exists", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: user already exists", ErrConflict)
		}
		return nil, err
	}
	return s.session(u)
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, errInvalidCredentials
	}
	return s.session(u)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*auth.Claims, *model.User, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	}
	u, err := s.userRepo.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: user not found", ErrUnauthenticated)
		}
		return nil, nil, err
	}
	if u.TokenVersion != claims.Version {
		return nil, nil, fmt.Errorf("%w: token revoked", ErrUnauthenticated)
	}
	return claims, u, nil
}

func (s *authService) Logout(ctx context.Context, userID uint64) error {
	return notFound(s.userRepo.BumpTokenVersion(ctx, userID), "user")
}

func (s *authService) IssueFor(u *model.User) (string, error) {
	return s.issuer.Issue(u)
}

func (s *authService) session(u *model.User) (*Session, error) {
	tok, err := s.issuer.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, User: u}, nil
}
