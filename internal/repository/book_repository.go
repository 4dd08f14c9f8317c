package repository

import (
	"context"

	"github.com/shinyyama/book-market-backend/internal/model"
	"gorm.io/gorm"
)

type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	FindByID(ctx context.Context, id uint64) (*model.Book, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]model.Book, error)
	// List returns every book, or only those in category when it is non-empty.
	List(ctx context.Context, category string) ([]model.Book, error)
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepository) FindByID(ctx context.Context, id uint64) (*model.Book, error) {
	var book model.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) FindByIDs(ctx context.Context, ids []uint64) ([]model.Book, error) {
	var books []model.Book
	if len(ids) == 0 {
		return books, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) List(ctx context.Context, category string) ([]model.Book, error) {
	var books []model.Book
	q := r.db.WithContext(ctx).Model(&model.Book{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Order("created_at desc").Order("id desc").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}
