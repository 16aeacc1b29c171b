package interactions

import "time"

// Interaction is one question/answer exchange persisted against a document.
// Question and answer are written together; an interaction is never mutated.
type Interaction struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	CreatedAt  time.Time `json:"createdAt"`
}
