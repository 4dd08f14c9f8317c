package model

import "time"

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

type Message struct {
	ID        uint64        `gorm:"primaryKey;autoIncrement"`
	ChatID    uint64        `gorm:"column:chat_id;index;not null"`
	SenderID  uint64        `gorm:"column:sender_id;index;not null"`
	Text      string        `gorm:"type:text;not null"`
	Status    MessageStatus `gorm:"column:status;size:16;not null;default:sent"`
	CreatedAt time.Time     `gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}
