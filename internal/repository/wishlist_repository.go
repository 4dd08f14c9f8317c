package repository

import (
	"context"

	"github.com/shinyyama/book-market-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WishlistRepository interface {
	Add(ctx context.Context, userID, bookID uint64) error
	Remove(ctx context.Context, userID, bookID uint64) error
	Exists(ctx context.Context, userID, bookID uint64) (bool, error)
	// BookIDs returns the user's wishlist in insertion order.
	BookIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Add(ctx context.Context, userID, bookID uint64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.WishlistEntry{UserID: userID, BookID: bookID}).Error
}

func (r *wishlistRepository) Remove(ctx context.Context, userID, bookID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&model.WishlistEntry{}).Error
}

func (r *wishlistRepository) Exists(ctx context.Context, userID, bookID uint64) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.WishlistEntry{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *wishlistRepository) BookIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	if err := r.db.WithContext(ctx).
		Model(&model.WishlistEntry{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("book_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
