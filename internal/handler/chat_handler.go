package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/book-market-backend/internal/model"
	"github.com/shinyyama/book-market-backend/internal/service"
)

type ChatHandler struct {
	svc service.ChatService
}

func NewChatHandler(svc service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type createChatRequest struct {
	ParticipantID ID `json:"participantId"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type ChatMemberResponse struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type LastMessageResponse struct {
	Text      string             `json:"text"`
	Timestamp string             `json:"timestamp"`
	Sender    ChatMemberResponse `json:"sender"`
}

type ChatResponse struct {
	ID           uint64               `json:"id"`
	Participants []ChatMemberResponse `json:"participants"`
	LastMessage  *LastMessageResponse `json:"lastMessage,omitempty"`
	UnreadCount  int                  `json:"unreadCount"`
	CreatedAt    string               `json:"createdAt"`
	UpdatedAt    string               `json:"updatedAt"`
}

type ChatMessageResponse struct {
	ID        uint64 `json:"id"`
	ChatID    uint64 `json:"chatId"`
	SenderID  uint64 `json:"sender"`
	Text      string `json:"text"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func toChatMember(m service.ChatMember) ChatMemberResponse {
	return ChatMemberResponse{ID: m.ID, Name: m.Name, Image: m.Image}
}

func toChatResponse(v *service.ChatView) ChatResponse {
	resp := ChatResponse{
		ID:           v.ID,
		Participants: make([]ChatMemberResponse, 0, len(v.Participants)),
		UnreadCount:  v.UnreadCount,
		CreatedAt:    formatTime(v.CreatedAt),
		UpdatedAt:    formatTime(v.UpdatedAt),
	}
	for _, p := range v.Participants {
		resp.Participants = append(resp.Participants, toChatMember(p))
	}
	if v.LastMessage != nil {
		resp.LastMessage = &LastMessageResponse{
			Text:      v.LastMessage.Text,
			Timestamp: formatTime(v.LastMessage.Timestamp),
			Sender:    toChatMember(v.LastMessage.Sender),
		}
	}
	return resp
}

func toMessageResponse(m *model.Message) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		Status:    string(m.Status),
		Timestamp: formatTime(m.CreatedAt),
	}
}

func (h *ChatHandler) List(c echo.Context) error {
	views, err := h.svc.List(c.Request().Context(), currentUID(c))
	if err != nil {
		return writeError(c, err, "error fetching chats")
	}
	resp := make([]ChatResponse, 0, len(views))
	for i := range views {
		resp = append(resp, toChatResponse(&views[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) Create(c echo.Context) error {
	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	v, err := h.svc.CreateOrGet(c.Request().Context(), currentUID(c), uint64(req.ParticipantID))
	if err != nil {
		return writeError(c, err, "failed to create chat")
	}
	return c.JSON(http.StatusOK, toChatResponse(v))
}

func (h *ChatHandler) Messages(c echo.Context) error {
	chatID, ok := pathID(c, "chatId")
	if !ok {
		return badRequest(c, "invalid chat id")
	}
	msgs, err := h.svc.Messages(c.Request().Context(), chatID, currentUID(c))
	if err != nil {
		return writeError(c, err, "error fetching messages")
	}
	resp := make([]ChatMessageResponse, 0, len(msgs))
	for i := range msgs {
		resp = append(resp, toMessageResponse(&msgs[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) Send(c echo.Context) error {
	chatID, ok := pathID(c, "chatId")
	if !ok {
		return badRequest(c, "invalid chat id")
	}
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	msg, err := h.svc.Append(c.Request().Context(), chatID, currentUID(c), req.Text)
	if err != nil {
		return writeError(c, err, "error sending message")
	}
	return c.JSON(http.StatusOK, toMessageResponse(msg))
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	chatID, ok := pathID(c, "chatId")
	if !ok {
		return badRequest(c, "invalid chat id")
	}
	if err := h.svc.MarkRead(c.Request().Context(), chatID, currentUID(c)); err != nil {
		return writeError(c, err, "error updating message status")
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
