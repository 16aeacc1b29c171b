package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docqa-backend/internal/documents"
	"docqa-backend/internal/interactions"
	"docqa-backend/internal/llm"
	"docqa-backend/internal/shared/metrics"
)

var (
	// ErrTextNotReady indicates the document has no extracted text yet,
	// whether still PENDING, FAILED, or completed without text.
	ErrTextNotReady = errors.New("document text has not been extracted")
	// ErrInvalidInput indicates a missing or empty question.
	ErrInvalidInput = errors.New("question is required")
)

const promptTemplate = "Document text: %s\nQuestion: %s\nAnswer:"

// Service answers natural-language questions against extracted document text.
type Service struct {
	Docs         *documents.Service
	Interactions interactions.Repo
	LLM          llm.Client
}

// NewService constructs a Service.
func NewService(docs *documents.Service, repo interactions.Repo, client llm.Client) *Service {
	return &Service{Docs: docs, Interactions: repo, LLM: client}
}

// Query authorizes the document, asks the LLM, and persists question and
// answer together as one interaction.
func (s *Service) Query(ctx context.Context, userID, documentID, question string) (interactions.Interaction, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return interactions.Interaction{}, ErrInvalidInput
	}

	doc, err := s.Docs.Authorize(ctx, userID, documentID)
	if err != nil {
		return interactions.Interaction{}, err
	}
	if strings.TrimSpace(doc.OCRText) == "" {
		return interactions.Interaction{}, ErrTextNotReady
	}

	prompt := fmt.Sprintf(promptTemplate, doc.OCRText, question)
	answer, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return interactions.Interaction{}, fmt.Errorf("generate answer: %w", err)
	}

	it := interactions.Interaction{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Question:   question,
		Answer:     answer,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Interactions.Create(ctx, it); err != nil {
		return interactions.Interaction{}, err
	}
	metrics.IncQueries()
	return it, nil
}
