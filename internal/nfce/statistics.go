package nfce

import "errors"

var (
	// ErrNoDocuments is returned when statistics are requested over zero documents.
	ErrNoDocuments = errors.New("statistics need at least one document")
	// ErrZeroSum is returned when contribution percentages are requested over
	// totals that sum to zero.
	ErrZeroSum = errors.New("contributions are undefined when totals sum to zero")
)

// Statistics summarises per-document totals.
type Statistics struct {
	Count     int     `json:"count"`
	Sum       float64 `json:"sum"`
	Mean      float64 `json:"mean"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	ItemCount int     `json:"item_count"`
}

// ComputeStatistics returns count, sum, mean, min and max of totals.
func ComputeStatistics(totals []float64) (Statistics, error) {
	if len(totals) == 0 {
		return Statistics{}, ErrNoDocuments
	}

	stats := Statistics{
		Count: len(totals),
		Min:   totals[0],
		Max:   totals[0],
	}
	for _, t := range totals {
		stats.Sum += t
		stats.Min = min(stats.Min, t)
		stats.Max = max(stats.Max, t)
	}
	stats.Mean = stats.Sum / float64(stats.Count)
	return stats, nil
}

// Contributions returns 100*t/sum for every total.
func Contributions(totals []float64) ([]float64, error) {
	if len(totals) == 0 {
		return nil, ErrNoDocuments
	}

	var sum float64
	for _, t := range totals {
		sum += t
	}
	if sum == 0 {
		return nil, ErrZeroSum
	}

	shares := make([]float64, len(totals))
	for i, t := range totals {
		shares[i] = 100 * t / sum
	}
	return shares, nil
}
