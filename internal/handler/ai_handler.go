package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/book-market-backend/internal/service"
)

type AIHandler struct {
	svc service.AssistantService
}

func NewAIHandler(svc service.AssistantService) *AIHandler {
	return &AIHandler{svc: svc}
}

type askRequest struct {
	Question string `json:"question"`
}

type AnswerResponse struct {
	Answer string `json:"answer"`
}

func (h *AIHandler) AskBook(c echo.Context) error {
	id, ok := pathID(c, "bookId")
	if !ok {
		return badRequest(c, "invalid book id")
	}
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	answer, err := h.svc.AskBook(c.Request().Context(), id, currentUID(c), req.Question)
	if err != nil {
		return writeError(c, err, "failed to answer question")
	}
	return c.JSON(http.StatusOK, AnswerResponse{Answer: answer})
}
