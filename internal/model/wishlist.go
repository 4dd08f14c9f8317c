package model

import "time"

type WishlistEntry struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"column:user_id;not null;uniqueIndex:uk_wishlist_user_book"`
	BookID    uint64    `gorm:"column:book_id;not null;uniqueIndex:uk_wishlist_user_book"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (WishlistEntry) TableName() string {
	return "wishlist_entries"
}
