package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/otiai10/gosseract/v2"
)

// ErrEmptyText indicates extraction produced no text.
var ErrEmptyText = errors.New("extracted text is empty")

// Extractor produces plain text from raw file bytes.
type Extractor interface {
	Text(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Engine dispatches on the declared media type: PDFs go through the embedded
// text layer, images through Tesseract OCR.
type Engine struct {
	// Languages passed to Tesseract, e.g. ["eng"].
	Languages []string
}

// NewEngine constructs an Engine with the given OCR languages.
func NewEngine(languages []string) *Engine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Engine{Languages: languages}
}

// Text extracts plain text from an in-memory payload.
func (e *Engine) Text(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty file data")
	}

	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	var (
		text string
		err  error
	)
	switch {
	case clean == "application/pdf":
		text, err = extractPDF(data)
	case strings.HasPrefix(clean, "image/"):
		text, err = e.extractImage(data)
	default:
		return "", fmt.Errorf("unsupported mime type: %s", clean)
	}
	if err != nil {
		return "", fmt.Errorf("extract text mime=%s: %w", clean, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Engine) extractImage(data []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.Languages...); err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", err
	}
	return client.Text()
}

var _ Extractor = (*Engine)(nil)
