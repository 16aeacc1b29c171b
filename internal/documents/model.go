package documents

import "time"

// Status is the document lifecycle state. PENDING is assigned at creation;
// COMPLETED and FAILED are terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Document is an uploaded file owned by a user. OCRText stays empty until
// extraction completes; UserID never changes after creation.
type Document struct {
	ID        string
	UserID    string
	Filename  string
	MimeType  string
	FileData  []byte
	OCRText   string
	Status    Status
	CreatedAt time.Time
}
