package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shinyyama/book-market-backend/internal/ai"
	"github.com/shinyyama/book-market-backend/internal/repository"
)

type Answerer interface {
	Answer(ctx context.Context, book ai.BookFacts, question string) (string, error)
}

type AssistantService interface {
	AskBook(ctx context.Context, bookID, askerID uint64, question string) (string, error)
}

type assistantService struct {
	bookRepo repository.BookRepository
	answerer Answerer
}

// NewAssistantService accepts a nil answerer; questions then fail as upstream errors.
func NewAssistantService(bookRepo repository.BookRepository, answerer Answerer) AssistantService {
	return &assistantService{bookRepo: bookRepo, answerer: answerer}
}

func (s *assistantService) AskBook(ctx context.Context, bookID, askerID uint64, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", invalid("question is required")
	}
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return "", notFound(err, "book")
	}
	if book.SellerID == askerID {
		return "", fmt.Errorf("%w: cannot ask about your own book", ErrForbidden)
	}
	if s.answerer == nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, ai.ErrNotConfigured)
	}
	answer, err := s.answerer.Answer(ctx, ai.BookFacts{
		Name:        book.Name,
		Description: book.Description,
		Edition:     book.Edition,
		Publisher:   book.Publisher,
		Category:    book.Category,
		Price:       book.Price,
		MRP:         book.MRP,
	}, question)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return answer, nil
}
