// Package ai describes the document-understanding collaborator.
package ai

import "context"

// Document is a binary document handed to the service, usually a PDF resume.
type Document struct {
	Data     []byte
	MimeType string
	Name     string
}

// DocumentReader sends one instruction, optionally with a document attached,
// and returns the service's free-text answer.
type DocumentReader interface {
	Understand(ctx context.Context, instruction string, doc *Document) (string, error)
}
