// Package pdftext pulls plain text out of PDF resumes for backends that cannot
// read documents natively.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MimeType is the media type of PDF documents.
const MimeType = "application/pdf"

var (
	// ErrNoText is returned for documents without an extractable text layer.
	ErrNoText = errors.New("no text content found in PDF")

	magic = []byte("%PDF-")
)

// IsPDF reports whether the document is a PDF, by declared mime type or by
// its leading bytes.
func IsPDF(mimeType string, data []byte) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == MimeType {
		return true
	}
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), magic)
}

// Extract returns the text of every readable page. Pages that fail to decode
// are skipped.
func Extract(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", ErrNoText
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var builder strings.Builder
	total := r.NumPage()
	for index := 1; index <= total; index++ {
		page := r.Page(index)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		builder.WriteString(pageText)
		builder.WriteString("\n\n")
	}

	text = CleanText(builder.String())
	if text == "" {
		return "", ErrNoText
	}

	return text, nil
}

// CleanText trims every line and drops the empty ones.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
