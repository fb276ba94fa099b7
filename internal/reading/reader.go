// Package reading turns uploaded receipts into pages of text lines.
package reading

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/zombor/nfce-extractor/internal/nfce"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeText = "text/plain"
)

// ErrUnsupportedContentType is returned for inputs that are neither PDF nor plain text.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// Reader defines the interface for extracting page text from a document
type Reader interface {
	// ReadPages returns the text lines of every page of data
	ReadPages(data []byte, contentType string) ([]nfce.Page, error)
	// Close releases resources held by the reader
	Close() error
}

// New creates a Reader by backend name: "fitz" (MuPDF) or "pdf" (pure Go).
func New(kind string) (Reader, error) {
	switch kind {
	case "fitz":
		return NewFitz(), nil
	case "pdf":
		return NewPlainPDF(), nil
	}
	return nil, fmt.Errorf("invalid reader type %q (valid: fitz, pdf)", kind)
}

// ReadDocument reads data into an nfce.Document. A read failure is recorded on
// the document instead of being returned, so one bad file does not stop a run.
func ReadDocument(r Reader, name string, data []byte, contentType string) nfce.Document {
	doc := nfce.Document{Name: name}
	pages, err := r.ReadPages(data, contentType)
	if err != nil {
		slog.Error("Failed to read document",
			"filename", name,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		doc.ReadError = err.Error()
		return doc
	}
	doc.Pages = pages
	return doc
}

// ContentTypeFor resolves the content type of an upload from its declared
// header, falling back to the file extension when the header is missing or
// generic.
func ContentTypeFor(filename, header string) string {
	contentType := normalizeContentType(header)
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return contentTypePDF
	case ".txt":
		return contentTypeText
	}
	return "application/octet-stream"
}

// normalizeContentType lowercases a MIME type and drops its parameters
func normalizeContentType(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	return contentType
}

// readPages dispatches on content type. PDFs go to the given backend, plain
// text is split into pages on form feeds.
func readPages(data []byte, contentType string, fromPDF func([]byte) ([]nfce.Page, error)) ([]nfce.Page, error) {
	switch normalizeContentType(contentType) {
	case contentTypePDF:
		return fromPDF(data)
	case contentTypeText:
		return textPages(data), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
}

// textPages splits pdftotext-style output, where pages end with a form feed.
func textPages(data []byte) []nfce.Page {
	chunks := bytes.Split(data, []byte{'\f'})
	// A trailing form feed closes the last page rather than opening a new one.
	if len(chunks) > 1 && len(bytes.TrimSpace(chunks[len(chunks)-1])) == 0 {
		chunks = chunks[:len(chunks)-1]
	}
	pages := make([]nfce.Page, 0, len(chunks))
	for _, chunk := range chunks {
		pages = append(pages, nfce.SplitLines(string(chunk)))
	}
	return pages
}
