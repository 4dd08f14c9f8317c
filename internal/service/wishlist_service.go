package service

import (
	"context"
	"fmt"

	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/repository"
)

type WishlistService interface {
	Add(ctx context.Context, userID, bookID uint64) ([]model.Book, error)
	Remove(ctx context.Context, userID, bookID uint64) ([]model.Book, error)
	Check(ctx context.Context, userID, bookID uint64) (bool, error)
	List(ctx context.Context, userID uint64) ([]model.Book, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	bookRepo     repository.BookRepository
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, bookRepo repository.BookRepository) WishlistService {
	return &wishlistService{wishlistRepo: wishlistRepo, bookRepo: bookRepo}
}

func (s *wishlistService) Add(ctx context.Context, userID, bookID uint64) ([]model.Book, error) {
	if bookID == 0 {
		return nil, invalid("bookId is required")
	}
	if _, err := s.bookRepo.FindByID(ctx, bookID); err != nil {
		return nil, notFound(err, "book")
	}
	if err := s.wishlistRepo.Add(ctx, userID, bookID); err != nil {
		return nil, fmt.Errorf("add wishlist entry: %w", err)
	}
	return s.List(ctx, userID)
}

func (s *wishlistService) Remove(ctx context.Context, userID, bookID uint64) ([]model.Book, error) {
	if bookID == 0 {
		return nil, invalid("bookId is required")
	}
	if err := s.wishlistRepo.Remove(ctx, userID, bookID); err != nil {
		return nil, fmt.Errorf("remove wishlist entry: %w", err)
	}
	return s.List(ctx, userID)
}

func (s *wishlistService) Check(ctx context.Context, userID, bookID uint64) (bool, error) {
	if bookID == 0 {
		return false, invalid("bookId is required")
	}
	return s.wishlistRepo.Exists(ctx, userID, bookID)
}

func (s *wishlistService) List(ctx context.Context, userID uint64) ([]model.Book, error) {
	return wishlistBooks(ctx, s.wishlistRepo, s.bookRepo, userID)
}

// wishlistBooks loads the wishlist in insertion order, skipping books that
// no longer resolve.
func wishlistBooks(ctx context.Context, wishlistRepo repository.WishlistRepository, bookRepo repository.BookRepository, userID uint64) ([]model.Book, error) {
	ids, err := wishlistRepo.BookIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	books, err := bookRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]model.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	out := make([]model.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}
