package repository

import "gorm.io/gorm"

// Set bundles every repository the service layer needs.
type Set struct {
	Users     UserRepository
	Books     BookRepository
	Wishlist  WishlistRepository
	Payments  PaymentRepository
	Purchases PurchaseRepository
	Chats     ChatRepository
}

func NewGormSet(db *gorm.DB) Set {
	return Set{
		Users:     NewUserRepository(db),
		Books:     NewBookRepository(db),
		Wishlist:  NewWishlistRepository(db),
		Payments:  NewPaymentRepository(db),
		Purchases: NewPurchaseRepository(db),
		Chats:     NewChatRepository(db),
	}
}
