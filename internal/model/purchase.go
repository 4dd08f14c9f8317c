package model

import "time"

type LedgerStatus string

const (
	LedgerStatusCompleted LedgerStatus = "completed"
	LedgerStatusPending   LedgerStatus = "pending"
	LedgerStatusFailed    LedgerStatus = "failed"
)

type Payment struct {
	ID            uint64       `gorm:"primaryKey;autoIncrement"`
	UserID        uint64       `gorm:"column:user_id;index;not null"`
	BookID        uint64       `gorm:"column:book_id;index;not null"`
	SellerID      uint64       `gorm:"column:seller_id;index"`
	Amount        float64      `gorm:"column:amount;not null"`
	PaymentMethod string       `gorm:"column:payment_method;size:64;not null"`
	Status        LedgerStatus `gorm:"column:status;size:16;not null;default:completed"`
	CreatedAt     time.Time    `gorm:"autoCreateTime"`
}

func (Payment) TableName() string {
	return "payments"
}

// Purchase references a payment by id only; the payment is not checked.
type Purchase struct {
	ID        uint64       `gorm:"primaryKey;autoIncrement"`
	UserID    uint64       `gorm:"column:user_id;index;not null"`
	BookID    uint64       `gorm:"column:book_id;index;not null"`
	SellerID  uint64       `gorm:"column:seller_id;index;not null"`
	Amount    float64      `gorm:"column:amount;not null"`
	PaymentID uint64       `gorm:"column:payment_id;index;not null"`
	Status    LedgerStatus `gorm:"column:status;size:16;not null;default:completed"`
	CreatedAt time.Time    `gorm:"autoCreateTime"`
}

func (Purchase) TableName() string {
	return "purchases"
}
