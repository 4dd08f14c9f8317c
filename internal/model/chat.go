package model

import (
	"fmt"
	"time"
)

type Chat struct {
	ID                  uint64     `gorm:"primaryKey;autoIncrement"`
	PairKey             string     `gorm:"column:pair_key;size:64;not null;uniqueIndex:uk_chats_pair_key"`
	LastMessageText     string     `gorm:"column:last_message_text;type:text"`
	LastMessageAt       *time.Time `gorm:"column:last_message_at"`
	LastMessageSenderID *uint64    `gorm:"column:last_message_sender_id"`
	CreatedAt           time.Time  `gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime;index:idx_chats_updated_at"`

	Participants []ChatParticipant `gorm:"foreignKey:ChatID"`
}

func (Chat) TableName() string {
	return "chats"
}

// PairKey is order independent: PairKey(a, b) == PairKey(b, a).
func PairKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

type ChatParticipant struct {
	ChatID      uint64     `gorm:"column:chat_id;primaryKey"`
	UserID      uint64     `gorm:"column:user_id;primaryKey;index:idx_chat_participants_user_id"`
	UnreadCount int        `gorm:"column:unread_count;not null;default:0"`
	LastReadAt  *time.Time `gorm:"column:last_read_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
}

func (ChatParticipant) TableName() string {
	return "chat_participants"
}
