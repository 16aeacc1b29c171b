package extract

import (
	"context"
	"fmt"
	"strings"

	"docqa-backend/internal/documents"
	"docqa-backend/internal/shared/metrics"
	"docqa-backend/internal/shared/telemetry"
)

// Worker owns the PENDING -> {COMPLETED, FAILED} transition. Extraction
// failure is converted into a terminal FAILED status and never surfaces to
// the upload caller, who has long since received a response.
type Worker struct {
	Docs   documents.Repo
	Engine Extractor
}

// NewWorker constructs a Worker.
func NewWorker(docs documents.Repo, engine Extractor) *Worker {
	return &Worker{Docs: docs, Engine: engine}
}

// Process runs extraction for one document. A document that is no longer
// PENDING is a no-op, which makes redelivered jobs harmless. Only
// infrastructure errors are returned.
func (w *Worker) Process(ctx context.Context, documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return fmt.Errorf("document id is required")
	}

	doc, err := w.Docs.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", documentID, err)
	}
	if doc.Status != documents.StatusPending {
		telemetry.Info("extract.skip_terminal", map[string]any{
			"document_id": doc.ID,
			"status":      doc.Status,
		})
		return nil
	}

	metrics.IncExtractionStarted()
	started := metrics.NowMillis()

	text, extractErr := w.Engine.Text(ctx, doc.FileData, doc.MimeType)
	metrics.ObserveExtractionDurationMs(metrics.NowMillis() - started)

	if extractErr != nil {
		telemetry.Error("extract.failed", map[string]any{
			"document_id": doc.ID,
			"mime_type":   doc.MimeType,
			"error":       extractErr.Error(),
		})
		metrics.IncExtractionFailed()
		if err := w.Docs.MarkFailed(ctx, doc.ID); err != nil {
			return fmt.Errorf("mark document %s failed: %w", doc.ID, err)
		}
		return nil
	}

	if err := w.Docs.MarkCompleted(ctx, doc.ID, text); err != nil {
		return fmt.Errorf("mark document %s completed: %w", doc.ID, err)
	}
	metrics.IncExtractionCompleted()
	telemetry.Info("extract.completed", map[string]any{
		"document_id": doc.ID,
		"mime_type":   doc.MimeType,
		"text_len":    len(text),
	})
	return nil
}
