package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"docqa-backend/internal/extract"
	"docqa-backend/internal/shared/config"
)

type stubExtractor struct {
	text string
}

func (s stubExtractor) Text(ctx context.Context, data []byte, mimeType string) (string, error) {
	if s.text == "" {
		return "", extract.ErrEmptyText
	}
	return s.text, nil
}

type stubLLM struct {
	answer string
}

func (s stubLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return s.answer, nil
}

func buildTestApp(t *testing.T) *App {
	t.Helper()
	app, err := Build(config.Config{
		Port:        "8080",
		Env:         "dev",
		JWTSecret:   "test-secret",
		TokenTTL:    time.Hour,
		GeminiModel: "gemini-1.5-flash",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	app.ExtractWorker.Engine = stubExtractor{text: "Quarterly results."}
	app.QueryService.LLM = stubLLM{answer: "It is a quarterly report."}
	return app
}

func doJSON(t *testing.T, app *App, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func registerAndLogin(t *testing.T, app *App, name, email, password string) string {
	t.Helper()
	w := doJSON(t, app, http.MethodPost, "/auth/register", "",
		fmt.Sprintf(`{"name":%q,"email":%q,"password":%q}`, name, email, password))
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", email, w.Code, w.Body.String())
	}
	w = doJSON(t, app, http.MethodPost, "/auth/login", "",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	if w.Code != http.StatusCreated {
		t.Fatalf("login %s: expected 201, got %d: %s", email, w.Code, w.Body.String())
	}
	token, _ := decode(t, w)["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in %s", email, w.Body.String())
	}
	return token
}

func uploadPDF(t *testing.T, app *App, token, filename string) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	id, _ := decode(t, w)["id"].(string)
	if id == "" {
		t.Fatalf("upload: no id in %s", w.Body.String())
	}
	return id
}

func waitForStatus(t *testing.T, app *App, token, documentID, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		w := doJSON(t, app, http.MethodGet, "/documents/"+documentID+"/status", token, "")
		if w.Code != http.StatusOK {
			t.Fatalf("status: expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if got, _ := decode(t, w)["status"].(string); got == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("document %s never reached %s", documentID, want)
}

func TestFullDocumentQAFlow(t *testing.T) {
	app := buildTestApp(t)

	// Duplicate registration conflicts.
	alice := registerAndLogin(t, app, "Alice", "alice@example.com", "pw1234")
	w := doJSON(t, app, http.MethodPost, "/auth/register", "",
		`{"name":"Alice","email":"alice@example.com","password":"pw1234"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", w.Code)
	}
	if w := doJSON(t, app, http.MethodPost, "/auth/login", "",
		`{"email":"alice@example.com","password":"wrong1"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", w.Code)
	}

	docID := uploadPDF(t, app, alice, "report.pdf")
	waitForStatus(t, app, alice, docID, "COMPLETED")

	// Query the completed document.
	w = doJSON(t, app, http.MethodPost, "/documents/"+docID+"/query", alice,
		`{"question":"What is this document about?"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("query: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	answer := decode(t, w)
	if answer["answer"] != "It is a quarterly report." || answer["question"] != "What is this document about?" {
		t.Fatalf("unexpected interaction %v", answer)
	}

	// The interaction shows up on the document.
	w = doJSON(t, app, http.MethodGet, "/documents/"+docID, alice, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "It is a quarterly report.") {
		t.Fatalf("interaction missing from document: %s", w.Body.String())
	}

	// Another user cannot see it.
	bob := registerAndLogin(t, app, "Bob", "bob@example.com", "pw5678")
	if w := doJSON(t, app, http.MethodGet, "/documents/"+docID, bob, ""); w.Code != http.StatusForbidden {
		t.Fatalf("foreign fetch: expected 403, got %d", w.Code)
	}

	// Owner deletes; subsequent fetch is gone.
	if w := doJSON(t, app, http.MethodDelete, "/documents/"+docID, alice, ""); w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	if w := doJSON(t, app, http.MethodGet, "/documents/"+docID, alice, ""); w.Code != http.StatusNotFound {
		t.Fatalf("deleted fetch: expected 404, got %d", w.Code)
	}
}

func TestQueryWithoutTextIsRejected(t *testing.T) {
	app := buildTestApp(t)
	app.ExtractWorker.Engine = stubExtractor{text: ""}
	token := registerAndLogin(t, app, "Alice", "alice2@example.com", "pw1234")

	failedID := uploadPDF(t, app, token, "empty.pdf")
	waitForStatus(t, app, token, failedID, "FAILED")

	w := doJSON(t, app, http.MethodPost, "/documents/"+failedID+"/query", token,
		`{"question":"Anything?"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("query on failed doc: expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGuardedRoutesRejectMissingToken(t *testing.T) {
	app := buildTestApp(t)

	for _, path := range []string{"/documents", "/users/me"} {
		if w := doJSON(t, app, http.MethodGet, path, "", ""); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, w.Code)
		}
	}
	if w := doJSON(t, app, http.MethodGet, "/health", "", ""); w.Code != http.StatusOK {
		t.Errorf("/health should be public, got %d", w.Code)
	}
	if w := doJSON(t, app, http.MethodGet, "/metrics", "", ""); w.Code != http.StatusOK {
		t.Errorf("/metrics should be public, got %d", w.Code)
	}
}
