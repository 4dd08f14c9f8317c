package repository

import (
	"context"

	"github.com/shinyyama/book-market-backend/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]model.User, error)
	// PromoteToSeller only touches users that are not yet verified and
	// returns the number of rows changed.
	PromoteToSeller(ctx context.Context, id uint64, telegram, location string) (int64, error)
	SetImage(ctx context.Context, id uint64, imageURL string) (int64, error)
	BumpTokenVersion(ctx context.Context, id uint64) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uint64) ([]model.User, error) {
	var list []model.User
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userRepository) PromoteToSeller(ctx context.Context, id uint64, telegram, location string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND verified = ?", id, false).
		Updates(map[string]interface{}{
			"role":          model.RoleSeller,
			"verified":      true,
			"telegram":      telegram,
			"location":      location,
			"token_version": gorm.Expr("token_version + 1"),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *userRepository) SetImage(ctx context.Context, id uint64, imageURL string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("image", imageURL)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *userRepository) BumpTokenVersion(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("token_version", gorm.Expr("token_version + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
