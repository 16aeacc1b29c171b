package workerproc

import (
	"errors"
	"testing"

	"docqa-backend/internal/queue"
)

func TestParseMessageValid(t *testing.T) {
	body, _ := queue.EncodeMessage(queue.Message{DocumentID: "doc-1", RequestID: "req-1", Version: 1})

	msg, meta, err := ParseMessage(string(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.DocumentID != "doc-1" || msg.RequestID != "req-1" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if meta.BodyLen != len(body) || meta.BodySHA == "" {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestParseMessageEmptyBody(t *testing.T) {
	_, _, err := ParseMessage("   ")
	var empty ErrEmptyBody
	if !errors.As(err, &empty) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestParseMessageBadJSON(t *testing.T) {
	_, meta, err := ParseMessage("{not json")
	var decode ErrDecode
	if !errors.As(err, &decode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if meta.BodyLen == 0 || meta.BodySHA == "" {
		t.Fatalf("meta should describe the bad body: %+v", meta)
	}
}

func TestParseMessageMissingDocumentID(t *testing.T) {
	body, _ := queue.EncodeMessage(queue.Message{RequestID: "req-9"})

	_, _, err := ParseMessage(string(body))
	var missing ErrMissingDocumentID
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingDocumentID, got %v", err)
	}
	if missing.RequestID != "req-9" {
		t.Fatalf("request id not carried: %+v", missing)
	}
}
