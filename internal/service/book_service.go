package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shinyyama/book-market-backend/internal/cache"
	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/policy"
	"github.com/shinyyama/book-market-backend/internal/repository"
	"github.com/shinyyama/book-market-backend/internal/reqctx"
	"go.uber.org/zap"
)

type SellerSummary struct {
	ID       uint64
	Name     string
	Location string
	Telegram string
	Image    string
}

type BookListing struct {
	Book   model.Book
	Seller SellerSummary
}

type BookDetail struct {
	BookListing
	CanChat bool
}

type CreateBookInput struct {
	Name        string
	Description string
	Price       float64
	MRP         float64
	Edition     string
	Publisher   string
	Category    string
	BookFront   string
	BookBack    string
	BookIndex   string
	BookMiddle  string
}

type BookService interface {
	Create(ctx context.Context, sellerID uint64, in CreateBookInput) (*model.Book, error)
	List(ctx context.Context) ([]BookListing, error)
	ListByCategory(ctx context.Context, category string) ([]BookListing, error)
	Detail(ctx context.Context, bookID, viewerID uint64) (*BookDetail, error)
}

type bookService struct {
	bookRepo     repository.BookRepository
	userRepo     repository.UserRepository
	purchaseRepo repository.PurchaseRepository
	cache        *cache.Cache
	ttl          time.Duration
	log          *zap.Logger
}

// NewBookService wires the catalog. c may be nil to disable caching.
func NewBookService(bookRepo repository.BookRepository, userRepo repository.UserRepository, purchaseRepo repository.PurchaseRepository, c *cache.Cache, ttl time.Duration, log *zap.Logger) BookService {
	if log == nil {
		log = zap.NewNop()
	}
	return &bookService{
		bookRepo:     bookRepo,
		userRepo:     userRepo,
		purchaseRepo: purchaseRepo,
		cache:        c,
		ttl:          ttl,
		log:          log,
	}
}

func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

func (in CreateBookInput) validate() error {
	required := []struct{ field, value string }{
		{"name", in.Name},
		{"description", in.Description},
		{"edition", in.Edition},
		{"publisher", in.Publisher},
		{"category", in.Category},
		{"bookFront", in.BookFront},
		{"bookBack", in.BookBack},
		{"bookIndex", in.BookIndex},
		{"bookMiddle", in.BookMiddle},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalid(r.field + " is required")
		}
	}
	if in.Price < 0 || in.MRP < 0 {
		return invalid("price and mrp must not be negative")
	}
	return nil
}

func (s *bookService) Create(ctx context.Context, sellerID uint64, in CreateBookInput) (*model.Book, error) {
	seller, err := s.userRepo.FindByID(ctx, sellerID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if err := policy.Authorize(policy.ActorOf(seller), policy.ActionListBook); err != nil {
		return nil, policyError(err)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	book := &model.Book{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		MRP:         in.MRP,
		Edition:     strings.TrimSpace(in.Edition),
		Publisher:   strings.TrimSpace(in.Publisher),
		Category:    NormalizeCategory(in.Category),
		BookFront:   in.BookFront,
		BookBack:    in.BookBack,
		BookIndex:   in.BookIndex,
		BookMiddle:  in.BookMiddle,
		SellerID:    sellerID,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}
	invalidateCatalog(ctx, s.cache, s.log)
	return book, nil
}

// invalidateCatalog drops cached listings. c may be nil.
func invalidateCatalog(ctx context.Context, c *cache.Cache, log *zap.Logger) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx, "books:*"); err != nil {
		log.Warn("catalog cache invalidate failed", append(reqctx.Fields(ctx), zap.Error(err))...)
	}
}

func (s *bookService) List(ctx context.Context) ([]BookListing, error) {
	return s.cachedListing(ctx, "books:all", "")
}

func (s *bookService) ListByCategory(ctx context.Context, category string) ([]BookListing, error) {
	category = NormalizeCategory(category)
	if category == "" {
		return nil, invalid("category is required")
	}
	return s.cachedListing(ctx, "books:category:"+category, category)
}

func (s *bookService) cachedListing(ctx context.Context, key, category string) ([]BookListing, error) {
	load := func(ctx context.Context) ([]BookListing, error) {
		return s.listing(ctx, category)
	}
	if s.cache == nil {
		return load(ctx)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, key, s.ttl, load)
}

func (s *bookService) listing(ctx context.Context, category string) ([]BookListing, error) {
	books, err := s.bookRepo.List(ctx, category)
	if err != nil {
		return nil, err
	}
	sellers, err := s.sellers(ctx, books)
	if err != nil {
		return nil, err
	}
	out := make([]BookListing, 0, len(books))
	for _, b := range books {
		out = append(out, BookListing{Book: b, Seller: sellers[b.SellerID]})
	}
	return out, nil
}

func (s *bookService) sellers(ctx context.Context, books []model.Book) (map[uint64]SellerSummary, error) {
	seen := make(map[uint64]struct{}, len(books))
	ids := make([]uint64, 0, len(books))
	for _, b := range books {
		if _, ok := seen[b.SellerID]; ok {
			continue
		}
		seen[b.SellerID] = struct{}{}
		ids = append(ids, b.SellerID)
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]SellerSummary, len(users))
	for i := range users {
		out[users[i].ID] = sellerSummary(&users[i])
	}
	return out, nil
}

func (s *bookService) Detail(ctx context.Context, bookID, viewerID uint64) (*BookDetail, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, notFound(err, "book")
	}
	seller, err := s.userRepo.FindByID(ctx, book.SellerID)
	if err != nil {
		return nil, fmt.Errorf("load seller %d: %w", book.SellerID, err)
	}
	canChat := false
	if viewerID != 0 {
		canChat, err = s.purchaseRepo.HasCompletedForBook(ctx, viewerID, bookID)
		if err != nil {
			return nil, err
		}
	}
	return &BookDetail{
		BookListing: BookListing{Book: *book, Seller: sellerSummary(seller)},
		CanChat:     canChat,
	}, nil
}

func sellerSummary(u *model.User) SellerSummary {
	return SellerSummary{
		ID:       u.ID,
		Name:     u.Name,
		Location: u.Location,
		Telegram: u.Telegram,
		Image:    u.Image,
	}
}
