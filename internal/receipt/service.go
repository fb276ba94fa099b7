package receipt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/nfce-extractor/internal/export"
	"github.com/zombor/nfce-extractor/internal/nfce"
	"github.com/zombor/nfce-extractor/internal/reading"
)

var (
	// ErrNoFiles is returned when a run is requested without any upload
	ErrNoFiles = errors.New("at least one file is required")
	// ErrReceiptNotFound is returned for a document index outside the run
	ErrReceiptNotFound = errors.New("receipt not found")
)

// IDGenerator generates unique IDs for runs
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles extraction runs
type Service struct {
	db          DB
	reader      reading.Reader
	storage     Storage
	extractor   *nfce.Extractor
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, reader reading.Reader, storage Storage, extractor *nfce.Extractor) *Service {
	return NewServiceWithDeps(db, reader, storage, extractor, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, reader reading.Reader, storage Storage, extractor *nfce.Extractor, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		reader:      reader,
		storage:     storage,
		extractor:   extractor,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename strips special characters and truncates long names
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "nfce"
	}

	return base + strings.ToLower(ext)
}

// ProcessUploads stores the uploaded receipts, extracts their line items and
// saves the run. A receipt that cannot be read is kept in the run with its
// read error and no rows.
func (s *Service) ProcessUploads(ctx context.Context, uploads []Upload) (*Run, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}

	run := &Run{
		ID:        s.idGenerator.Generate(),
		CreatedAt: s.timeSource.Now(),
		Receipts:  make([]Receipt, 0, len(uploads)),
	}

	docs := make([]nfce.Document, 0, len(uploads))
	for i, upload := range uploads {
		name := fmt.Sprintf("%s_%03d_%s", run.ID, i+1, sanitizeFilename(upload.Filename))
		storedAs, err := s.storage.Save(name, upload.Data)
		if err != nil {
			s.removeFiles(run.Receipts)
			return nil, fmt.Errorf("saving file: %w", err)
		}
		run.Receipts = append(run.Receipts, Receipt{
			Index:       i + 1,
			Filename:    upload.Filename,
			StoredAs:    storedAs,
			ContentType: upload.ContentType,
			Size:        len(upload.Data),
		})
		docs = append(docs, reading.ReadDocument(s.reader, upload.Filename, upload.Data, upload.ContentType))
	}

	result, err := s.extractor.ExtractCorpus(ctx, docs)
	if err != nil {
		s.removeFiles(run.Receipts)
		return nil, fmt.Errorf("extracting line items: %w", err)
	}
	run.Result = *result

	if err := s.db.SaveRun(run); err != nil {
		s.removeFiles(run.Receipts)
		return nil, fmt.Errorf("saving run to database: %w", err)
	}

	slog.Info("Processed run",
		"run_id", run.ID,
		"documents", len(result.Documents),
		"rows", len(result.CombinedRows),
	)
	return run, nil
}

// removeFiles deletes stored receipts, logging failures
func (s *Service) removeFiles(receipts []Receipt) {
	for _, r := range receipts {
		if err := s.storage.Delete(r.StoredAs); err != nil {
			slog.Warn("Failed to delete file", "filename", r.StoredAs, "error", err)
		}
	}
}

// GetRun retrieves a run by ID
func (s *Service) GetRun(id string) (*Run, error) {
	run, err := s.db.GetRun(id)
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}
	return run, nil
}

// ListRuns returns all runs
func (s *Service) ListRuns() ([]*Run, error) {
	runs, err := s.db.ListRuns()
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes a run and its stored receipts
func (s *Service) DeleteRun(id string) error {
	run, err := s.db.GetRun(id)
	if err != nil {
		return fmt.Errorf("getting run for deletion: %w", err)
	}

	// File errors are logged; the run is deleted regardless
	s.removeFiles(run.Receipts)

	if err := s.db.DeleteRun(id); err != nil {
		return fmt.Errorf("deleting run from database: %w", err)
	}
	return nil
}

// GetReceiptFile returns the stored source document at the 1-based index of a run
func (s *Service) GetReceiptFile(runID string, index int) ([]byte, string, error) {
	run, err := s.db.GetRun(runID)
	if err != nil {
		return nil, "", fmt.Errorf("getting run: %w", err)
	}
	if index < 1 || index > len(run.Receipts) {
		return nil, "", fmt.Errorf("%w: %s/%d", ErrReceiptNotFound, runID, index)
	}

	r := run.Receipts[index-1]
	data, err := s.storage.Get(r.StoredAs)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}
	return data, r.ContentType, nil
}

// Summary returns the statistics and per-document chart data of a run
func (s *Service) Summary(id string) (*Summary, error) {
	run, err := s.db.GetRun(id)
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}
	summary, err := Summarize(run)
	if err != nil {
		return nil, fmt.Errorf("summarizing run: %w", err)
	}
	return summary, nil
}

// Export writes the run as an XLSX workbook
func (s *Service) Export(id string, w io.Writer) error {
	run, err := s.db.GetRun(id)
	if err != nil {
		return fmt.Errorf("getting run: %w", err)
	}
	if err := export.Write(&run.Result, w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
