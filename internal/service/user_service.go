package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shinyyama/book-market-backend/internal/cache"
	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/policy"
	"github.com/shinyyama/book-market-backend/internal/repository"
	"go.uber.org/zap"
)

type PublicProfile struct {
	User     *model.User
	Wishlist []model.Book
}

type UserService interface {
	// BecomeSeller promotes the user and returns a token for the new role.
	// Older tokens of the user stop authenticating.
	BecomeSeller(ctx context.Context, userID uint64, telegram, location string) (*Session, error)
	SetProfileImage(ctx context.Context, actorID, userID uint64, imageURL string) (*model.User, error)
	PublicProfile(ctx context.Context, userID uint64) (*PublicProfile, error)
}

type userService struct {
	userRepo     repository.UserRepository
	bookRepo     repository.BookRepository
	wishlistRepo repository.WishlistRepository
	auth         AuthService
	catalog      *cache.Cache
	log          *zap.Logger
}

// NewUserService wires user operations. catalog may be nil; when set, seller
// profile changes drop the cached listings that embed them.
func NewUserService(userRepo repository.UserRepository, bookRepo repository.BookRepository, wishlistRepo repository.WishlistRepository, auth AuthService, catalog *cache.Cache, log *zap.Logger) UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &userService{
		userRepo:     userRepo,
		bookRepo:     bookRepo,
		wishlistRepo: wishlistRepo,
		auth:         auth,
		catalog:      catalog,
		log:          log,
	}
}

func (s *userService) BecomeSeller(ctx context.Context, userID uint64, telegram, location string) (*Session, error) {
	telegram = strings.TrimSpace(telegram)
	location = strings.TrimSpace(location)
	if telegram == "" || location == "" {
		return nil, invalid("telegram and location are required")
	}
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if err := policy.Authorize(policy.ActorOf(u), policy.ActionBecomeSeller); err != nil {
		return nil, policyError(err)
	}
	n, err := s.userRepo.PromoteToSeller(ctx, userID, telegram, location)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Lost a race with a concurrent promotion.
		return nil, policyError(policy.ErrAlreadyVerified)
	}
	u, err = s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	tok, err := s.auth.IssueFor(u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, User: u}, nil
}

func (s *userService) SetProfileImage(ctx context.Context, actorID, userID uint64, imageURL string) (*model.User, error) {
	if actorID != userID {
		return nil, fmt.Errorf("%w: cannot change another user's image", ErrForbidden)
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, invalid("imageUrl is required")
	}
	n, err := s.userRepo.SetImage(ctx, userID, imageURL)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	invalidateCatalog(ctx, s.catalog, s.log)
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (s *userService) PublicProfile(ctx context.Context, userID uint64) (*PublicProfile, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	books, err := wishlistBooks(ctx, s.wishlistRepo, s.bookRepo, userID)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{User: u, Wishlist: books}, nil
}

// policyError maps a policy decision onto the service error kinds.
func policyError(err error) error {
	switch {
	case errors.Is(err, policy.ErrAlreadyVerified):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, policy.ErrForbidden):
		return fmt.Errorf("%w: only verified sellers can do this", ErrForbidden)
	default:
		return err
	}
}
