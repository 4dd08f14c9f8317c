package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shinyyama/book-market-backend/internal/model"
	"gorm.io/gorm"
)

type chatRepo struct{ s *Store }

// withParticipants must be called with the lock held.
func (r chatRepo) withParticipants(c model.Chat) *model.Chat {
	parts := r.s.parts[c.ID]
	c.Participants = append([]model.ChatParticipant(nil), parts...)
	return &c
}

func (r chatRepo) FindByPairKey(ctx context.Context, pairKey string) (*model.Chat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.chats {
		if c.PairKey == pairKey {
			return r.withParticipants(c), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r chatRepo) Create(ctx context.Context, chat *model.Chat, userIDs []uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.chats {
		if c.PairKey == chat.PairKey {
			return gorm.ErrDuplicatedKey
		}
	}
	now := time.Now()
	chat.ID = r.s.nextID()
	chat.CreatedAt, chat.UpdatedAt = now, now
	parts := make([]model.ChatParticipant, 0, len(userIDs))
	for _, uid := range userIDs {
		parts = append(parts, model.ChatParticipant{ChatID: chat.ID, UserID: uid, CreatedAt: now})
	}
	stored := *chat
	stored.Participants = nil
	r.s.chats[chat.ID] = stored
	r.s.parts[chat.ID] = parts
	chat.Participants = append([]model.ChatParticipant(nil), parts...)
	return nil
}

func (r chatRepo) FindByID(ctx context.Context, id uint64) (*model.Chat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.chats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.withParticipants(c), nil
}

func (r chatRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Chat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []model.Chat
	for id, parts := range r.s.parts {
		for _, p := range parts {
			if p.UserID == userID {
				list = append(list, *r.withParticipants(r.s.chats[id]))
				break
			}
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (r chatRepo) ListMessages(ctx context.Context, chatID uint64) ([]model.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var msgs []model.Message
	for _, m := range r.s.messages {
		if m.ChatID == chatID {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

func (r chatRepo) AppendMessage(ctx context.Context, msg *model.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chats[msg.ChatID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	msg.ID = r.s.nextID()
	if msg.Status == "" {
		msg.Status = model.MessageStatusSent
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	r.s.messages = append(r.s.messages, *msg)

	at, sender := msg.CreatedAt, msg.SenderID
	c.LastMessageText = msg.Text
	c.LastMessageAt = &at
	c.LastMessageSenderID = &sender
	c.UpdatedAt = at
	r.s.chats[c.ID] = c

	parts := r.s.parts[c.ID]
	for i := range parts {
		if parts[i].UserID != sender {
			parts[i].UnreadCount++
		}
	}
	return nil
}

func (r chatRepo) MarkRead(ctx context.Context, chatID, readerID uint64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	parts := r.s.parts[chatID]
	found := false
	for i := range parts {
		if parts[i].UserID == readerID {
			parts[i].UnreadCount = 0
			t := at
			parts[i].LastReadAt = &t
			found = true
		}
	}
	if !found {
		return gorm.ErrRecordNotFound
	}
	for i := range r.s.messages {
		m := &r.s.messages[i]
		if m.ChatID == chatID && m.SenderID != readerID {
			m.Status = model.MessageStatusRead
		}
	}
	return nil
}

func (r chatRepo) MarkDelivered(ctx context.Context, chatID, recipientID uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for i := range r.s.messages {
		m := &r.s.messages[i]
		if m.ChatID == chatID && m.SenderID != recipientID && m.Status == model.MessageStatusSent {
			m.Status = model.MessageStatusDelivered
			n++
		}
	}
	return n, nil
}
