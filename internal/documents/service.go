package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docqa-backend/internal/interactions"
	"docqa-backend/internal/queue"
	"docqa-backend/internal/shared/telemetry"
)

var supportedMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
}

// SupportedMimeType reports whether uploads with the given media type are accepted.
func SupportedMimeType(mimeType string) bool {
	_, ok := supportedMimeTypes[normalizeMimeType(mimeType)]
	return ok
}

func normalizeMimeType(raw string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(raw, ";")[0]))
	if clean == "image/jpg" {
		return "image/jpeg"
	}
	return clean
}

// WithInteractions pairs a document with its interaction history.
type WithInteractions struct {
	Document
	Interactions []interactions.Interaction
}

// Service contains business logic for the document lifecycle.
type Service struct {
	Repo         Repo
	Interactions interactions.Repo
	Queue        queue.Client
}

// Upload persists a PENDING document and hands extraction to the queue.
// The returned document is still PENDING; extraction outcome is observed
// later through Status or Get.
func (s *Service) Upload(ctx context.Context, userID, filename, mimeType string, data []byte) (Document, error) {
	if len(data) == 0 {
		return Document{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	mimeType = normalizeMimeType(mimeType)
	if _, ok := supportedMimeTypes[mimeType]; !ok {
		return Document{}, fmt.Errorf("%w: unsupported media type %q", ErrInvalidInput, mimeType)
	}
	if strings.TrimSpace(filename) == "" {
		filename = "document"
	}

	doc := Document{
		ID:        uuid.NewString(),
		UserID:    userID,
		Filename:  filename,
		MimeType:  mimeType,
		FileData:  data,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	msg := queue.Message{
		DocumentID: doc.ID,
		EnqueuedAt: doc.CreatedAt.Format(time.RFC3339),
		Version:    1,
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		// The upload already succeeded from the caller's perspective; a job
		// that cannot be enqueued will never complete, so fail the document.
		telemetry.Error("documents.enqueue_failed", map[string]any{
			"document_id": doc.ID,
			"error":       err.Error(),
		})
		if markErr := s.Repo.MarkFailed(ctx, doc.ID); markErr != nil {
			telemetry.Error("documents.mark_failed_error", map[string]any{
				"document_id": doc.ID,
				"error":       markErr.Error(),
			})
		}
		doc.Status = StatusFailed
	}

	return doc, nil
}

// Authorize resolves a document and verifies ownership. Existence is checked
// before ownership so a missing document is NotFound, not Forbidden.
func (s *Service) Authorize(ctx context.Context, userID, documentID string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.UserID != userID {
		return Document{}, ErrForbidden
	}
	return doc, nil
}

// Get returns an owned document with its interactions.
func (s *Service) Get(ctx context.Context, userID, documentID string) (WithInteractions, error) {
	doc, err := s.Authorize(ctx, userID, documentID)
	if err != nil {
		return WithInteractions{}, err
	}
	history, err := s.Interactions.ListByDocument(ctx, doc.ID)
	if err != nil {
		return WithInteractions{}, err
	}
	return WithInteractions{Document: doc, Interactions: history}, nil
}

// List returns all documents owned by a user with their interactions.
func (s *Service) List(ctx context.Context, userID string) ([]WithInteractions, error) {
	docs, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]WithInteractions, 0, len(docs))
	for _, doc := range docs {
		history, err := s.Interactions.ListByDocument(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, WithInteractions{Document: doc, Interactions: history})
	}
	return out, nil
}

// Status returns the lifecycle status of an owned document.
func (s *Service) Status(ctx context.Context, userID, documentID string) (Status, error) {
	doc, err := s.Authorize(ctx, userID, documentID)
	if err != nil {
		return "", err
	}
	return doc.Status, nil
}

// Delete removes an owned document and its interactions.
func (s *Service) Delete(ctx context.Context, userID, documentID string) error {
	doc, err := s.Authorize(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if err := s.Interactions.DeleteByDocument(ctx, doc.ID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, doc.ID)
}

// DownloadFull renders an owned document as a plain-text transcript:
// filename, extracted text, and all interactions in creation order.
func (s *Service) DownloadFull(ctx context.Context, userID, documentID string) (Document, string, error) {
	full, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return Document{}, "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s\n\n", full.Filename)
	b.WriteString("Extracted Text:\n")
	b.WriteString(full.OCRText)
	b.WriteString("\n\nInteractions:\n")
	for _, it := range full.Interactions {
		fmt.Fprintf(&b, "\nQuestion: %s\nAnswer: %s\n", it.Question, it.Answer)
	}
	return full.Document, b.String(), nil
}
