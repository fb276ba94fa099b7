package reading

import (
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/zombor/nfce-extractor/internal/nfce"
)

// Fitz implements the Reader interface using MuPDF through go-fitz
type Fitz struct{}

// NewFitz creates a new Fitz reader
func NewFitz() *Fitz {
	return &Fitz{}
}

// ReadPages extracts the text of every page
func (f *Fitz) ReadPages(data []byte, contentType string) ([]nfce.Page, error) {
	return readPages(data, contentType, fitzPages)
}

// Close is a no-op; documents are closed after each read
func (f *Fitz) Close() error {
	return nil
}

func fitzPages(data []byte) ([]nfce.Page, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]nfce.Page, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			return nil, fmt.Errorf("extracting text from page %d: %w", n+1, err)
		}
		pages = append(pages, nfce.SplitLines(text))
	}
	return pages, nil
}
