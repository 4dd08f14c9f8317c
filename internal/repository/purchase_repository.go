package repository

import (
	"context"

	"github.com/shinyyama/book-market-backend/internal/model"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	HasCompletedForBook(ctx context.Context, userID, bookID uint64) (bool, error)
	// HasCompletedForSeller looks for a completed payment on any book listed by sellerID.
	HasCompletedForSeller(ctx context.Context, userID, sellerID uint64) (bool, error)
}

type PurchaseRepository interface {
	Create(ctx context.Context, p *model.Purchase) error
	HasCompletedForBook(ctx context.Context, userID, bookID uint64) (bool, error)
	ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Purchase, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]model.Purchase, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *paymentRepository) HasCompletedForBook(ctx context.Context, userID, bookID uint64) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, model.LedgerStatusCompleted).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *paymentRepository) HasCompletedForSeller(ctx context.Context, userID, sellerID uint64) (bool, error) {
	sellerBooks := r.db.Model(&model.Book{}).Select("id").Where("seller_id = ?", sellerID)
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("user_id = ? AND status = ? AND book_id IN (?)", userID, model.LedgerStatusCompleted, sellerBooks).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, p *model.Purchase) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *purchaseRepository) HasCompletedForBook(ctx context.Context, userID, bookID uint64) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Purchase{}).
		Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, model.LedgerStatusCompleted).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *purchaseRepository) ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Purchase, error) {
	var list []model.Purchase
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", buyerID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *purchaseRepository) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Purchase, error) {
	var list []model.Purchase
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
