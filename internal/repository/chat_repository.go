package repository

import (
	"context"
	"time"

	"github.com/shinyyama/book-market-backend/internal/model"
	"gorm.io/gorm"
)

type ChatRepository interface {
	FindByPairKey(ctx context.Context, pairKey string) (*model.Chat, error)
	// Create inserts the chat and one participant row per user. A second
	// chat for the same pair fails with gorm.ErrDuplicatedKey.
	Create(ctx context.Context, chat *model.Chat, userIDs []uint64) error
	FindByID(ctx context.Context, id uint64) (*model.Chat, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Chat, error)
	ListMessages(ctx context.Context, chatID uint64) ([]model.Message, error)
	// AppendMessage stores msg, refreshes the lastMessage projection and
	// bumps the unread counter of every participant except the sender.
	AppendMessage(ctx context.Context, msg *model.Message) error
	// MarkRead clears the reader's unread counter and marks every message
	// the reader did not send as read.
	MarkRead(ctx context.Context, chatID, readerID uint64, at time.Time) error
	// MarkDelivered moves sent messages addressed to recipientID to delivered.
	MarkDelivered(ctx context.Context, chatID, recipientID uint64) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) FindByPairKey(ctx context.Context, pairKey string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("pair_key = ?", pairKey).
		First(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) Create(ctx context.Context, chat *model.Chat, userIDs []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Participants").Create(chat).Error; err != nil {
			return err
		}
		parts := make([]model.ChatParticipant, 0, len(userIDs))
		for _, uid := range userIDs {
			parts = append(parts, model.ChatParticipant{ChatID: chat.ID, UserID: uid})
		}
		if err := tx.Create(&parts).Error; err != nil {
			return err
		}
		chat.Participants = parts
		return nil
	})
}

func (r *chatRepository) FindByID(ctx context.Context, id uint64) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.WithContext(ctx).Preload("Participants").First(&chat, id).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) ListByUser(ctx context.Context, userID uint64) ([]model.Chat, error) {
	mine := r.db.Model(&model.ChatParticipant{}).Select("chat_id").Where("user_id = ?", userID)
	var list []model.Chat
	if err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id IN (?)", mine).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *chatRepository) ListMessages(ctx context.Context, chatID uint64) ([]model.Message, error) {
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *chatRepository) AppendMessage(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Chat{}).
			Where("id = ?", msg.ChatID).
			Updates(map[string]interface{}{
				"last_message_text":      msg.Text,
				"last_message_at":        msg.CreatedAt,
				"last_message_sender_id": msg.SenderID,
				"updated_at":             msg.CreatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&model.ChatParticipant{}).
			Where("chat_id = ? AND user_id <> ?", msg.ChatID, msg.SenderID).
			Update("unread_count", gorm.Expr("unread_count + ?", 1)).Error
	})
}

func (r *chatRepository) MarkRead(ctx context.Context, chatID, readerID uint64, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ChatParticipant{}).
			Where("chat_id = ? AND user_id = ?", chatID, readerID).
			Updates(map[string]interface{}{
				"unread_count": 0,
				"last_read_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&model.Message{}).
			Where("chat_id = ? AND sender_id <> ? AND status <> ?", chatID, readerID, model.MessageStatusRead).
			Update("status", model.MessageStatusRead).Error
	})
}

func (r *chatRepository) MarkDelivered(ctx context.Context, chatID, recipientID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND status = ?", chatID, recipientID, model.MessageStatusSent).
		Update("status", model.MessageStatusDelivered)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
