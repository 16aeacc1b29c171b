package interactions

import "context"

// Repo defines persistence operations for document interactions.
type Repo interface {
	Create(ctx context.Context, it Interaction) error
	ListByDocument(ctx context.Context, documentID string) ([]Interaction, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
