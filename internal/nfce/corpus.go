package nfce

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// CorpusResult aggregates the results of one run over many documents.
type CorpusResult struct {
	Documents    []DocumentResult `json:"documents"`
	CombinedRows []LineItem       `json:"combined_rows"`
}

// NewCorpusResult builds a CorpusResult from per-document results, keeping
// their order.
func NewCorpusResult(docs []DocumentResult) *CorpusResult {
	combined := make([]LineItem, 0)
	for _, doc := range docs {
		combined = append(combined, doc.Rows...)
	}
	return &CorpusResult{
		Documents:    docs,
		CombinedRows: combined,
	}
}

// ExtractCorpus extracts every document with its own validator and
// accumulator. Documents run in parallel but the result keeps input order.
// Cancelling ctx stops the run at the next document boundary.
func (e *Extractor) ExtractCorpus(ctx context.Context, docs []Document) (*CorpusResult, error) {
	results := make([]DocumentResult, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount(len(docs)))
	for i := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.Extract(docs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return NewCorpusResult(results), nil
}

// Totals returns the per-document totals in document order.
func (c *CorpusResult) Totals() []float64 {
	totals := make([]float64, len(c.Documents))
	for i, doc := range c.Documents {
		totals[i] = doc.Total
	}
	return totals
}

// Statistics summarises the per-document totals. It fails with
// ErrNoDocuments for an empty corpus.
func (c *CorpusResult) Statistics() (Statistics, error) {
	stats, err := ComputeStatistics(c.Totals())
	if err != nil {
		return Statistics{}, err
	}
	stats.ItemCount = len(c.CombinedRows)
	return stats, nil
}

// Contributions returns each document's share of the corpus total, in percent.
func (c *CorpusResult) Contributions() ([]float64, error) {
	return Contributions(c.Totals())
}
