package documents_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"docqa-backend/internal/documents"
	"docqa-backend/internal/extract"
	"docqa-backend/internal/interactions"
	"docqa-backend/internal/queue"
	sharedauth "docqa-backend/internal/shared/auth"
	"docqa-backend/internal/shared/server/middleware"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Text(ctx context.Context, data []byte, mimeType string) (string, error) {
	return s.text, s.err
}

type env struct {
	router *gin.Engine
	tokens *sharedauth.TokenManager
	docs   *documents.MemoryRepo
}

func newEnv(t *testing.T, extractor extract.Extractor) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	docs := documents.NewMemoryRepo()
	history := interactions.NewMemoryRepo()
	worker := extract.NewWorker(docs, extractor)
	local := queue.NewLocalClient(worker, 1)

	svc := &documents.Service{Repo: docs, Interactions: history, Queue: local}
	handler := documents.NewHandler(svc)
	tokens := sharedauth.NewTokenManager("test-secret", time.Hour)

	r := gin.New()
	protected := r.Group("")
	protected.Use(middleware.Auth(tokens))
	handler.RegisterRoutes(protected)

	return &env{router: r, tokens: tokens, docs: docs}
}

func (e *env) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.tokens.Issue(userID, userID+"@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (e *env) do(t *testing.T, method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) upload(t *testing.T, token, filename, mimeType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return e.do(t, http.MethodPost, "/documents/upload", token, &buf, mw.FormDataContentType())
}

func (e *env) waitForStatus(t *testing.T, token, documentID string, want documents.Status) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		w := e.do(t, http.MethodGet, "/documents/"+documentID+"/status", token, nil, "")
		if w.Code != http.StatusOK {
			t.Fatalf("status check: %d: %s", w.Code, w.Body.String())
		}
		var resp struct {
			Status documents.Status `json:"status"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if resp.Status == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("document %s never reached status %s", documentID, want)
}

func TestUploadLifecycleCompletes(t *testing.T) {
	e := newEnv(t, stubExtractor{text: "Quarterly results."})
	token := e.token(t, "user-1")

	w := e.upload(t, token, "report.pdf", "application/pdf", []byte("%PDF-1.4"))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created documents.DocumentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if created.Status != documents.StatusPending {
		t.Fatalf("upload response should be PENDING, got %s", created.Status)
	}

	e.waitForStatus(t, token, created.ID, documents.StatusCompleted)

	w = e.do(t, http.MethodGet, "/documents/"+created.ID, token, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	var fetched documents.DocumentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if fetched.OCRText != "Quarterly results." {
		t.Fatalf("extracted text not visible: %+v", fetched)
	}
	if fetched.Interactions == nil {
		t.Fatal("interactions must serialize as an array")
	}
}

func TestUploadExtractionFailureEndsFailed(t *testing.T) {
	e := newEnv(t, stubExtractor{err: errors.New("unreadable")})
	token := e.token(t, "user-1")

	w := e.upload(t, token, "scan.png", "image/png", []byte{1, 2, 3})
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created documents.DocumentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}

	e.waitForStatus(t, token, created.ID, documents.StatusFailed)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	e := newEnv(t, stubExtractor{text: "x"})
	token := e.token(t, "user-1")

	if w := e.upload(t, token, "notes.txt", "text/plain", []byte("hello")); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRoutesRequireAuth(t *testing.T) {
	e := newEnv(t, stubExtractor{text: "x"})

	for _, path := range []string{"/documents", "/documents/doc-1", "/documents/doc-1/status"} {
		if w := e.do(t, http.MethodGet, path, "", nil, ""); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, w.Code)
		}
	}
}

func TestAccessControlOrdering(t *testing.T) {
	e := newEnv(t, stubExtractor{text: "x"})
	owner := e.token(t, "owner")
	intruder := e.token(t, "intruder")

	w := e.upload(t, owner, "report.pdf", "application/pdf", []byte("%PDF-1.4"))
	var created documents.DocumentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}

	if w := e.do(t, http.MethodGet, "/documents/"+created.ID, intruder, nil, ""); w.Code != http.StatusForbidden {
		t.Fatalf("foreign document: expected 403, got %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/documents/does-not-exist", intruder, nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing document: expected 404, got %d", w.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	e := newEnv(t, stubExtractor{text: "x"})
	token := e.token(t, "user-1")

	w := e.upload(t, token, "report.pdf", "application/pdf", []byte("%PDF-1.4"))
	var created documents.DocumentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}

	w = e.do(t, http.MethodDelete, "/documents/"+created.ID, token, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"deleted":true`) {
		t.Fatalf("unexpected delete body: %s", w.Body.String())
	}

	if w := e.do(t, http.MethodGet, "/documents/"+created.ID, token, nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("deleted document: expected 404, got %d", w.Code)
	}
}

func TestDownloadFullSetsAttachment(t *testing.T) {
	e := newEnv(t, stubExtractor{text: "Quarterly results."})
	token := e.token(t, "user-1")

	w := e.upload(t, token, "report.pdf", "application/pdf", []byte("%PDF-1.4"))
	var created documents.DocumentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	e.waitForStatus(t, token, created.ID, documents.StatusCompleted)

	w = e.do(t, http.MethodGet, "/documents/"+created.ID+"/download-full", token, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "report.pdf-full.txt") {
		t.Fatalf("unexpected disposition %q", got)
	}
	if !strings.Contains(w.Body.String(), "Extracted Text:\nQuarterly results.") {
		t.Fatalf("unexpected transcript:\n%s", w.Body.String())
	}
}
