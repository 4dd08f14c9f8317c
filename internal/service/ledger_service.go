package service

import (
	"context"
	"strings"

	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/repository"
)

type PaymentService interface {
	Record(ctx context.Context, userID, bookID, sellerID uint64, amount float64, method string) (*model.Payment, error)
	HasPaidForBook(ctx context.Context, userID, bookID uint64) (bool, error)
	HasPaidSeller(ctx context.Context, userID, sellerID uint64) (bool, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
}

func NewPaymentService(paymentRepo repository.PaymentRepository) PaymentService {
	return &paymentService{paymentRepo: paymentRepo}
}

func (s *paymentService) Record(ctx context.Context, userID, bookID, sellerID uint64, amount float64, method string) (*model.Payment, error) {
	method = strings.TrimSpace(method)
	if bookID == 0 || method == "" {
		return nil, invalid("bookId and paymentMethod are required")
	}
	if amount <= 0 {
		return nil, invalid("amount must be positive")
	}
	p := &model.Payment{
		UserID:        userID,
		BookID:        bookID,
		SellerID:      sellerID,
		Amount:        amount,
		PaymentMethod: method,
		Status:        model.LedgerStatusCompleted,
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *paymentService) HasPaidForBook(ctx context.Context, userID, bookID uint64) (bool, error) {
	return s.paymentRepo.HasCompletedForBook(ctx, userID, bookID)
}

func (s *paymentService) HasPaidSeller(ctx context.Context, userID, sellerID uint64) (bool, error) {
	return s.paymentRepo.HasCompletedForSeller(ctx, userID, sellerID)
}

type PurchaseWithBook struct {
	Purchase model.Purchase
	Book     *model.Book
}

type PurchaseService interface {
	Record(ctx context.Context, userID, bookID, sellerID uint64, amount float64, paymentID uint64) (*model.Purchase, error)
	HasPurchased(ctx context.Context, userID, bookID uint64) (bool, error)
	ListByBuyer(ctx context.Context, buyerID uint64) ([]PurchaseWithBook, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]PurchaseWithBook, error)
}

type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	bookRepo     repository.BookRepository
}

func NewPurchaseService(purchaseRepo repository.PurchaseRepository, bookRepo repository.BookRepository) PurchaseService {
	return &purchaseService{purchaseRepo: purchaseRepo, bookRepo: bookRepo}
}

// Record stores the purchase as completed. paymentID is kept as given; it is
// not checked against the payments ledger.
func (s *purchaseService) Record(ctx context.Context, userID, bookID, sellerID uint64, amount float64, paymentID uint64) (*model.Purchase, error) {
	if bookID == 0 || sellerID == 0 || paymentID == 0 {
		return nil, invalid("bookId, sellerId and paymentId are required")
	}
	if amount < 0 {
		return nil, invalid("amount must not be negative")
	}
	p := &model.Purchase{
		UserID:    userID,
		BookID:    bookID,
		SellerID:  sellerID,
		Amount:    amount,
		PaymentID: paymentID,
		Status:    model.LedgerStatusCompleted,
	}
	if err := s.purchaseRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *purchaseService) HasPurchased(ctx context.Context, userID, bookID uint64) (bool, error) {
	return s.purchaseRepo.HasCompletedForBook(ctx, userID, bookID)
}

func (s *purchaseService) ListByBuyer(ctx context.Context, buyerID uint64) ([]PurchaseWithBook, error) {
	purchases, err := s.purchaseRepo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return s.attachBooks(ctx, purchases)
}

func (s *purchaseService) ListBySeller(ctx context.Context, sellerID uint64) ([]PurchaseWithBook, error) {
	purchases, err := s.purchaseRepo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return s.attachBooks(ctx, purchases)
}

func (s *purchaseService) attachBooks(ctx context.Context, purchases []model.Purchase) ([]PurchaseWithBook, error) {
	ids := make([]uint64, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.BookID)
	}
	books, err := s.bookRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*model.Book, len(books))
	for i := range books {
		byID[books[i].ID] = &books[i]
	}
	resp := make([]PurchaseWithBook, 0, len(purchases))
	for _, p := range purchases {
		resp = append(resp, PurchaseWithBook{Purchase: p, Book: byID[p.BookID]})
	}
	return resp, nil
}
