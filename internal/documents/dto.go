package documents

import (
	"time"

	"docqa-backend/internal/interactions"
)

// DocumentResponse is the outward-facing representation of a document.
// Raw file bytes are never echoed back.
type DocumentResponse struct {
	ID           string                     `json:"id"`
	Filename     string                     `json:"filename"`
	MimeType     string                     `json:"mimeType"`
	Status       Status                     `json:"status"`
	OCRText      string                     `json:"ocrText,omitempty"`
	CreatedAt    time.Time                  `json:"createdAt"`
	Interactions []interactions.Interaction `json:"interactions"`
}

func toResponse(full WithInteractions) DocumentResponse {
	history := full.Interactions
	if history == nil {
		history = []interactions.Interaction{}
	}
	return DocumentResponse{
		ID:           full.ID,
		Filename:     full.Filename,
		MimeType:     full.MimeType,
		Status:       full.Status,
		OCRText:      full.OCRText,
		CreatedAt:    full.CreatedAt,
		Interactions: history,
	}
}
