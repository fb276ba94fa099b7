package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/peterbourgon/ff/v4"

	"github.com/zombor/nfce-extractor/internal/export"
	"github.com/zombor/nfce-extractor/internal/nfce"
	"github.com/zombor/nfce-extractor/internal/reading"
)

var errNoInputs = errors.New("at least one input file is required")

func newExtractCommand(parent *ff.FlagSet, cfg *rootConfig) *ff.Command {
	fs := ff.NewFlagSet("extract").SetParent(parent)
	out := fs.StringLong("out", "", "Write the rows to this XLSX file")

	return &ff.Command{
		Name:      "extract",
		Usage:     "nfce-extractor extract [FLAGS] FILE...",
		ShortHelp: "Extract line items from local NFC-e files",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return errNoInputs
			}

			reader, extractor, err := cfg.pipeline()
			if err != nil {
				return err
			}
			defer reader.Close()

			result, err := extractFiles(ctx, reader, extractor, args)
			if err != nil {
				return err
			}
			if err := printReport(os.Stdout, result); err != nil {
				return err
			}
			if *out != "" {
				return writeWorkbook(result, *out)
			}
			return nil
		},
	}
}

// extractFiles reads every path and extracts them as one corpus
func extractFiles(ctx context.Context, reader reading.Reader, extractor *nfce.Extractor, paths []string) (*nfce.CorpusResult, error) {
	docs := make([]nfce.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		contentType := reading.ContentTypeFor(path, "")
		docs = append(docs, reading.ReadDocument(reader, filepath.Base(path), data, contentType))
	}

	result, err := extractor.ExtractCorpus(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("extracting line items: %w", err)
	}
	return result, nil
}

// printReport writes per-document totals followed by the statistics block
func printReport(w io.Writer, result *nfce.CorpusResult) error {
	for i, doc := range result.Documents {
		fmt.Fprintf(w, "%dª NFC-e DANFE R$ %s (%s, %d rows)\n", i+1, nfce.FormatAmount(doc.Total), doc.Name, len(doc.Rows))
		if doc.ReadError != "" {
			fmt.Fprintf(w, "  read error: %s\n", doc.ReadError)
		}
		if t := doc.Tally; t.PagesWithoutHeader+t.MalformedLines+t.OutOfSequence+t.UnparsedAmounts > 0 {
			fmt.Fprintf(w, "  pages without header: %d, malformed lines: %d, out of sequence: %d, unparsed amounts: %d\n",
				t.PagesWithoutHeader, t.MalformedLines, t.OutOfSequence, t.UnparsedAmounts)
		}
	}

	stats, err := result.Statistics()
	if err != nil {
		return fmt.Errorf("computing statistics: %w", err)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Documents: %d\n", stats.Count)
	fmt.Fprintf(w, "Items:     %d\n", stats.ItemCount)
	fmt.Fprintf(w, "Sum:       R$ %s\n", nfce.FormatAmount(stats.Sum))
	fmt.Fprintf(w, "Mean:      R$ %s\n", nfce.FormatAmount(stats.Mean))
	fmt.Fprintf(w, "Min:       R$ %s\n", nfce.FormatAmount(stats.Min))
	fmt.Fprintf(w, "Max:       R$ %s\n", nfce.FormatAmount(stats.Max))

	shares, err := result.Contributions()
	if errors.Is(err, nfce.ErrZeroSum) {
		fmt.Fprintf(w, "Contributions: %v\n", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("computing contributions: %w", err)
	}
	for i, share := range shares {
		fmt.Fprintf(w, "PDF %d: %.2f%%\n", i+1, share)
	}
	return nil
}

// writeWorkbook saves the rows as an XLSX file at path
func writeWorkbook(result *nfce.CorpusResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.Write(result, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	slog.Info("Wrote workbook", "path", path, "documents", len(result.Documents))
	return nil
}
