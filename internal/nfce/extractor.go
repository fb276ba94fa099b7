package nfce

import (
	"log/slog"
	"runtime"
	"strings"
)

// Outcome classifies what happened to one line inside the item table.
type Outcome int

const (
	// OutcomeMalformed means the line is not shaped like a row.
	OutcomeMalformed Outcome = iota
	// OutcomeOutOfSequence means the row broke item-number continuity and was dropped.
	OutcomeOutOfSequence
	// OutcomeAccepted means the row was kept and its amount added to the total.
	OutcomeAccepted
	// OutcomeAcceptedUnparsed means the row was kept but its amount did not parse.
	OutcomeAcceptedUnparsed
)

// Option configures an Extractor.
type Option func(*Extractor)

// WithContinuity sets the item-number continuity policy.
func WithContinuity(p ContinuityPolicy) Option {
	return func(e *Extractor) { e.continuity = p }
}

// WithWorkers bounds how many documents ExtractCorpus processes at once.
// Values below 1 mean one worker per CPU.
func WithWorkers(n int) Option {
	return func(e *Extractor) { e.workers = n }
}

// WithLogger sets the logger used for per-page diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// Extractor runs header location, row parsing, sequence validation and
// amount accumulation over documents. It holds configuration only and is
// safe for concurrent use.
type Extractor struct {
	continuity ContinuityPolicy
	workers    int
	logger     *slog.Logger
}

// NewExtractor creates an Extractor. By default continuity restarts on
// every page.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{continuity: ContinuityPerPage}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Continuity returns the configured continuity policy.
func (e *Extractor) Continuity() ContinuityPolicy {
	return e.continuity
}

// Extract recovers the rows and total of one document. Pages without a
// header contribute nothing. Rows keep page order, then line order.
func (e *Extractor) Extract(doc Document) DocumentResult {
	result := DocumentResult{
		Name:      doc.Name,
		Rows:      make([]LineItem, 0),
		ReadError: doc.ReadError,
	}

	var (
		validator SequenceValidator
		acc       Accumulator
	)
	for pageIndex, page := range doc.Pages {
		result.Tally.Pages++

		start, ok := LocateHeader(page)
		if !ok {
			result.Tally.PagesWithoutHeader++
			e.logger.Debug("page has no item header",
				"document", doc.Name,
				"page", pageIndex+1,
			)
			continue
		}
		if e.continuity == ContinuityPerPage {
			validator.Reset()
		}

		for _, line := range page[start:] {
			if strings.TrimSpace(line) == "" {
				continue
			}
			item, outcome := classifyLine(line, &validator)
			switch outcome {
			case OutcomeMalformed:
				result.Tally.MalformedLines++
				continue
			case OutcomeOutOfSequence:
				result.Tally.OutOfSequence++
				continue
			case OutcomeAcceptedUnparsed:
				result.Tally.UnparsedAmounts++
			}
			acc.Add(item)
			result.Rows = append(result.Rows, item)
		}
	}

	result.Total = acc.Total()
	e.logger.Debug("document extracted",
		"document", doc.Name,
		"rows", len(result.Rows),
		"total", FormatAmount(result.Total),
	)
	return result
}

func classifyLine(line string, validator *SequenceValidator) (LineItem, Outcome) {
	item, ok := ParseRow(line)
	if !ok {
		return LineItem{}, OutcomeMalformed
	}
	if !validator.Accept(item) {
		return item, OutcomeOutOfSequence
	}
	if !item.AmountParsed {
		return item, OutcomeAcceptedUnparsed
	}
	return item, OutcomeAccepted
}

func (e *Extractor) workerCount(docs int) int {
	n := e.workers
	if n < 1 {
		n = runtime.NumCPU()
	}
	if n > docs {
		n = docs
	}
	if n < 1 {
		n = 1
	}
	return n
}
