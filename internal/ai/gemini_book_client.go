package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shinyyama/book-market-backend/internal/reqctx"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

var ErrNotConfigured = errors.New("gemini api key is not set")

type BookAssistant struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

func NewBookAssistant(ctx context.Context, apiKey, model string, log *zap.Logger) (*BookAssistant, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if log == nil {
		log = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client init: %w", err)
	}
	return &BookAssistant{client: client, model: model, log: log}, nil
}

// Answer asks Gemini about one listing and returns the cleaned reply.
func (a *BookAssistant) Answer(ctx context.Context, book BookFacts, question string) (string, error) {
	start := time.Now()
	fields := reqctx.Fields(ctx)

	parts := []*genai.Part{
		genai.NewPartFromText(systemPrompt),
		genai.NewPartFromText(listingPrompt(book)),
		genai.NewPartFromText(questionPrompt(question)),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	temp := float32(0.5)
	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: 512,
	}
	res, err := a.client.Models.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		a.log.Warn("gemini generate failed", append(fields, zap.String("model", a.model), zap.Error(err))...)
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	answer, err := CleanAnswer(res.Text())
	if err != nil {
		a.log.Warn("gemini returned no usable answer", append(fields, zap.String("model", a.model))...)
		return "", err
	}
	a.log.Info("gemini answered", append(fields,
		zap.String("model", a.model),
		zap.Int("answer_len", len(answer)),
		zap.Int64("gen_ms", time.Since(start).Milliseconds()),
	)...)
	return answer, nil
}
