package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/repository"
	"github.com/shinyyama/book-market-backend/internal/reqctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ChatMember struct {
	ID    uint64
	Name  string
	Image string
}

type LastMessage struct {
	Text      string
	Timestamp time.Time
	Sender    ChatMember
}

// ChatView is a chat as seen by one of its participants.
type ChatView struct {
	ID           uint64
	Participants []ChatMember
	LastMessage  *LastMessage
	UnreadCount  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ChatService interface {
	CreateOrGet(ctx context.Context, initiatorID, otherID uint64) (*ChatView, error)
	List(ctx context.Context, userID uint64) ([]ChatView, error)
	// Messages returns the chat history and marks the caller's pending
	// incoming messages as delivered.
	Messages(ctx context.Context, chatID, userID uint64) ([]model.Message, error)
	Append(ctx context.Context, chatID, senderID uint64, text string) (*model.Message, error)
	MarkRead(ctx context.Context, chatID, readerID uint64) error
}

type chatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository, log *zap.Logger) ChatService {
	if log == nil {
		log = zap.NewNop()
	}
	return &chatService{chatRepo: chatRepo, userRepo: userRepo, log: log, now: time.Now}
}

func (s *chatService) CreateOrGet(ctx context.Context, initiatorID, otherID uint64) (*ChatView, error) {
	if initiatorID == 0 || otherID == 0 {
		return nil, invalid("participantId is required")
	}
	if initiatorID == otherID {
		return nil, invalid("cannot chat with yourself")
	}
	if _, err := s.userRepo.FindByID(ctx, otherID); err != nil {
		return nil, notFound(err, "user")
	}
	key := model.PairKey(initiatorID, otherID)
	chat, err := s.chatRepo.FindByPairKey(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		chat = &model.Chat{PairKey: key}
		err = s.chatRepo.Create(ctx, chat, []uint64{initiatorID, otherID})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Info("chat create lost race, reusing existing", append(reqctx.Fields(ctx), zap.String("pair_key", key))...)
			chat, err = s.chatRepo.FindByPairKey(ctx, key)
		}
	}
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []model.Chat{*chat}, initiatorID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *chatService) List(ctx context.Context, userID uint64) ([]ChatView, error) {
	chats, err := s.chatRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, chats, userID)
}

func (s *chatService) Messages(ctx context.Context, chatID, userID uint64) ([]model.Message, error) {
	if _, err := s.participantChat(ctx, chatID, userID); err != nil {
		return nil, err
	}
	if _, err := s.chatRepo.MarkDelivered(ctx, chatID, userID); err != nil {
		return nil, fmt.Errorf("mark delivered: %w", err)
	}
	return s.chatRepo.ListMessages(ctx, chatID)
}

func (s *chatService) Append(ctx context.Context, chatID, senderID uint64, text string) (*model.Message, error) {
	if _, err := s.participantChat(ctx, chatID, senderID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, invalid("text is required")
	}
	msg := &model.Message{
		ChatID:    chatID,
		SenderID:  senderID,
		Text:      text,
		Status:    model.MessageStatusSent,
		CreatedAt: s.now(),
	}
	if err := s.chatRepo.AppendMessage(ctx, msg); err != nil {
		return nil, notFound(err, "chat")
	}
	return msg, nil
}

func (s *chatService) MarkRead(ctx context.Context, chatID, readerID uint64) error {
	if _, err := s.participantChat(ctx, chatID, readerID); err != nil {
		return err
	}
	return notFound(s.chatRepo.MarkRead(ctx, chatID, readerID, s.now()), "chat")
}

// participantChat loads the chat and checks userID belongs to it.
func (s *chatService) participantChat(ctx context.Context, chatID, userID uint64) (*model.Chat, error) {
	chat, err := s.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return nil, notFound(err, "chat")
	}
	for _, p := range chat.Participants {
		if p.UserID == userID {
			return chat, nil
		}
	}
	return nil, fmt.Errorf("%w: not a participant of this chat", ErrForbidden)
}

func (s *chatService) views(ctx context.Context, chats []model.Chat, viewerID uint64) ([]ChatView, error) {
	var ids []uint64
	seen := map[uint64]struct{}{}
	for _, c := range chats {
		for _, p := range c.Participants {
			if _, ok := seen[p.UserID]; !ok {
				seen[p.UserID] = struct{}{}
				ids = append(ids, p.UserID)
			}
		}
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	members := make(map[uint64]ChatMember, len(users))
	for _, u := range users {
		members[u.ID] = ChatMember{ID: u.ID, Name: u.Name, Image: u.Image}
	}
	member := func(id uint64) ChatMember {
		if m, ok := members[id]; ok {
			return m
		}
		return ChatMember{ID: id}
	}

	out := make([]ChatView, 0, len(chats))
	for _, c := range chats {
		v := ChatView{ID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
		for _, p := range c.Participants {
			v.Participants = append(v.Participants, member(p.UserID))
			if p.UserID == viewerID {
				v.UnreadCount = p.UnreadCount
			}
		}
		if c.LastMessageAt != nil && c.LastMessageSenderID != nil {
			v.LastMessage = &LastMessage{
				Text:      c.LastMessageText,
				Timestamp: *c.LastMessageAt,
				Sender:    member(*c.LastMessageSenderID),
			}
		}
		out = append(out, v)
	}
	return out, nil
}
