package receipt

import (
	"errors"
	"fmt"

	"github.com/zombor/nfce-extractor/internal/nfce"
)

// DocumentSummary is the per-document view used for reports and charts
type DocumentSummary struct {
	Index        int      `json:"index"`
	Label        string   `json:"label"`
	Name         string   `json:"name"`
	Rows         int      `json:"rows"`
	Total        float64  `json:"total"`
	Contribution *float64 `json:"contribution,omitempty"` // percent of the run total
	ReadError    string   `json:"read_error,omitempty"`
}

// Summary holds the statistics of a run and its per-document breakdown
type Summary struct {
	RunID              string            `json:"run_id"`
	Statistics         nfce.Statistics   `json:"statistics"`
	Documents          []DocumentSummary `json:"documents"`
	ContributionsError string            `json:"contributions_error,omitempty"`
}

// Summarize computes the summary of run. Contributions are left out, with the
// reason recorded, when the document totals sum to zero.
func Summarize(run *Run) (*Summary, error) {
	stats, err := run.Result.Statistics()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:      run.ID,
		Statistics: stats,
		Documents:  make([]DocumentSummary, 0, len(run.Result.Documents)),
	}
	for i, doc := range run.Result.Documents {
		summary.Documents = append(summary.Documents, DocumentSummary{
			Index:     i + 1,
			Label:     fmt.Sprintf("PDF %d", i+1),
			Name:      doc.Name,
			Rows:      len(doc.Rows),
			Total:     doc.Total,
			ReadError: doc.ReadError,
		})
	}

	shares, err := run.Result.Contributions()
	switch {
	case errors.Is(err, nfce.ErrZeroSum):
		summary.ContributionsError = err.Error()
	case err != nil:
		return nil, err
	default:
		for i := range shares {
			summary.Documents[i].Contribution = &shares[i]
		}
	}
	return summary, nil
}
