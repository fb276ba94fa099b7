package receipt

import (
	"time"

	"github.com/zombor/nfce-extractor/internal/nfce"
)

// Receipt is one uploaded NFC-e document within a run
type Receipt struct {
	Index       int    `json:"index"` // 1-based position in the run
	Filename    string `json:"filename"`
	StoredAs    string `json:"stored_as"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// Run is one extraction over a batch of uploaded receipts
type Run struct {
	ID        string            `json:"id"`
	Receipts  []Receipt         `json:"receipts"`
	Result    nfce.CorpusResult `json:"result"`
	CreatedAt time.Time         `json:"created_at"`
}

// RunInfo is the listing view of a run, without its rows
type RunInfo struct {
	ID        string    `json:"id"`
	Documents int       `json:"documents"`
	Rows      int       `json:"rows"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// Info returns the listing view of r
func (r *Run) Info() RunInfo {
	var total float64
	for _, t := range r.Result.Totals() {
		total += t
	}
	return RunInfo{
		ID:        r.ID,
		Documents: len(r.Result.Documents),
		Rows:      len(r.Result.CombinedRows),
		Total:     total,
		CreatedAt: r.CreatedAt,
	}
}

// Upload is a file received for extraction
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
