package documents

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates no document matches the lookup.
	ErrNotFound = errors.New("document not found")
	// ErrForbidden indicates the document exists but belongs to another user.
	ErrForbidden = errors.New("access denied")
	// ErrInvalidInput indicates a missing file or unsupported media type.
	ErrInvalidInput = errors.New("invalid input")
)

// Repo defines persistence operations for documents. Lookups are by document
// id alone; ownership is checked by the service so that a cross-user hit can
// be distinguished from a missing row.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	// MarkCompleted and MarkFailed only apply to PENDING documents;
	// terminal states are never overwritten.
	MarkCompleted(ctx context.Context, documentID, text string) error
	MarkFailed(ctx context.Context, documentID string) error
	Delete(ctx context.Context, documentID string) error
}
