package model

import "time"

type Book struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text;not null"`
	Price       float64   `gorm:"not null"`
	MRP         float64   `gorm:"column:mrp;not null"`
	Edition     string    `gorm:"size:64;not null"`
	Publisher   string    `gorm:"size:255;not null"`
	Category    string    `gorm:"size:120;not null;index:idx_books_category"`
	BookFront   string    `gorm:"column:book_front;size:512;not null"`
	BookBack    string    `gorm:"column:book_back;size:512;not null"`
	BookIndex   string    `gorm:"column:book_index;size:512;not null"`
	BookMiddle  string    `gorm:"column:book_middle;size:512;not null"`
	SellerID    uint64    `gorm:"column:seller_id;not null;index:idx_books_seller_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Book) TableName() string {
	return "books"
}
