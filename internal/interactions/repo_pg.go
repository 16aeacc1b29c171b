package interactions

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres. Deleting a document cascades to its
// interactions at the schema level, so DeleteByDocument is only needed to
// mirror the memory repo's behavior.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new interaction.
func (r *PGRepo) Create(ctx context.Context, it Interaction) error {
	const query = `
INSERT INTO llm_interactions (id, document_id, question, answer, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query,
		it.ID,
		it.DocumentID,
		it.Question,
		it.Answer,
		it.CreatedAt,
	)
	return err
}

// ListByDocument returns interactions for a document in creation order.
func (r *PGRepo) ListByDocument(ctx context.Context, documentID string) ([]Interaction, error) {
	const query = `
SELECT id, document_id, question, answer, created_at
FROM llm_interactions
WHERE document_id = $1
ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var it Interaction
		if err := rows.Scan(&it.ID, &it.DocumentID, &it.Question, &it.Answer, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// DeleteByDocument removes all interactions for a document.
func (r *PGRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	const query = `DELETE FROM llm_interactions WHERE document_id = $1`
	_, err := r.DB.ExecContext(ctx, query, documentID)
	return err
}

var _ Repo = (*PGRepo)(nil)
