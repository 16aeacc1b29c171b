package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, user_id, filename, mime_type, file_data, ocr_text, status, created_at)
VALUES ($1, $2, $3, $4, $5, NULL, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Filename,
		doc.MimeType,
		doc.FileData,
		string(doc.Status),
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by id regardless of owner.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	const query = `
SELECT id, user_id, filename, mime_type, file_data, ocr_text, status, created_at
FROM documents
WHERE id = $1
LIMIT 1`
	var doc Document
	var ocrText sql.NullString
	var status string
	err := r.DB.QueryRowContext(ctx, query, documentID).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Filename,
		&doc.MimeType,
		&doc.FileData,
		&ocrText,
		&status,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if ocrText.Valid {
		doc.OCRText = ocrText.String
	}
	doc.Status = Status(status)
	return doc, nil
}

// ListByUser lists documents owned by a user, oldest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	const query = `
SELECT id, user_id, filename, mime_type, file_data, ocr_text, status, created_at
FROM documents
WHERE user_id = $1
ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		var ocrText sql.NullString
		var status string
		if err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.Filename,
			&doc.MimeType,
			&doc.FileData,
			&ocrText,
			&status,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		if ocrText.Valid {
			doc.OCRText = ocrText.String
		}
		doc.Status = Status(status)
		out = append(out, doc)
	}
	return out, rows.Err()
}

// MarkCompleted stores the extracted text and completes a PENDING document.
func (r *PGRepo) MarkCompleted(ctx context.Context, documentID, text string) error {
	const query = `
UPDATE documents
SET ocr_text = $1, status = $2
WHERE id = $3 AND status = $4`
	_, err := r.DB.ExecContext(ctx, query, text, string(StatusCompleted), documentID, string(StatusPending))
	return err
}

// MarkFailed fails a PENDING document.
func (r *PGRepo) MarkFailed(ctx context.Context, documentID string) error {
	const query = `
UPDATE documents
SET status = $1
WHERE id = $2 AND status = $3`
	_, err := r.DB.ExecContext(ctx, query, string(StatusFailed), documentID, string(StatusPending))
	return err
}

// Delete removes a document; interactions cascade at the schema level.
func (r *PGRepo) Delete(ctx context.Context, documentID string) error {
	const query = `DELETE FROM documents WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, documentID)
	return err
}

var _ Repo = (*PGRepo)(nil)
