// Package document provides page-by-page plain text from quiz documents.
package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrAccess is returned when a document cannot be opened or parsed.
var ErrAccess = errors.New("document access error")

// Source produces the plain text of each page of a document, in page order,
// with line breaks preserved.
type Source interface {
	PageTexts(ctx context.Context) ([]string, error)
	// Fingerprint identifies the current document content. It changes when
	// the document changes.
	Fingerprint(ctx context.Context) (string, error)
}

// TextSource serves fixed in-memory pages.
type TextSource struct {
	pages []string
}

// NewTextSource creates a source over the given pages.
func NewTextSource(pages ...string) *TextSource {
	return &TextSource{pages: append([]string{}, pages...)}
}

// SplitPages splits text on form feeds, the page separator written by
// pdftotext and similar tools.
func SplitPages(text string) []string {
	if text == "" {
		return []string{}
	}
	return strings.Split(text, "\f")
}

func (s *TextSource) PageTexts(context.Context) ([]string, error) {
	return append([]string{}, s.pages...), nil
}

func (s *TextSource) Fingerprint(context.Context) (string, error) {
	h := sha256.New()
	for _, p := range s.pages {
		h.Write([]byte(p))
		h.Write([]byte{'\f'})
	}
	return "text:" + hex.EncodeToString(h.Sum(nil)), nil
}
