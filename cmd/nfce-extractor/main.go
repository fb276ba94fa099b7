package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/nfce-extractor/internal/nfce"
	"github.com/zombor/nfce-extractor/internal/reading"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// rootConfig holds the flags shared by every subcommand
type rootConfig struct {
	logLevel   *string
	logFormat  *string
	readerKind *string
	continuity *string
	workers    *int
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	rootFlags := ff.NewFlagSet("nfce-extractor")
	cfg := rootConfig{
		logLevel:   rootFlags.StringLong("log-level", "info", "Log level: debug, info, warn or error"),
		logFormat:  rootFlags.StringLong("log-format", "text", "Log format: text or json"),
		readerKind: rootFlags.StringLong("reader", "fitz", "PDF text reader: 'fitz' (MuPDF) or 'pdf' (pure Go)"),
		continuity: rootFlags.StringLong("continuity", "page", "Item sequence scope: 'page' or 'document'"),
		workers:    rootFlags.IntLong("workers", 0, "Documents extracted in parallel (0 = one per CPU)"),
	}

	rootCmd := &ff.Command{
		Name:      "nfce-extractor",
		Usage:     "nfce-extractor [FLAGS] <SUBCOMMAND> ...",
		ShortHelp: "Extract line items from NFC-e DANFE receipts",
		Flags:     rootFlags,
	}
	rootCmd.Subcommands = append(rootCmd.Subcommands,
		newServeCommand(rootFlags, &cfg),
		newExtractCommand(rootFlags, &cfg),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ParseAndRun(ctx, os.Args[1:], ff.WithEnvVarPrefix("NFCE_EXTRACTOR"))
	switch {
	case err == nil:
	case errors.Is(err, ff.ErrHelp), errors.Is(err, ff.ErrNoExec):
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(rootCmd.GetSelected()))
	default:
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(rootCmd.GetSelected()))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging installs the default slog logger
func setupLogging(level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format %q (valid: text, json)", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// pipeline builds the reader and extractor from the root flags
func (c *rootConfig) pipeline() (reading.Reader, *nfce.Extractor, error) {
	if err := setupLogging(*c.logLevel, *c.logFormat); err != nil {
		return nil, nil, err
	}

	policy, err := nfce.ParseContinuityPolicy(*c.continuity)
	if err != nil {
		return nil, nil, err
	}

	reader, err := reading.New(*c.readerKind)
	if err != nil {
		return nil, nil, err
	}

	extractor := nfce.NewExtractor(
		nfce.WithContinuity(policy),
		nfce.WithWorkers(*c.workers),
	)
	slog.Debug("Pipeline ready", "reader", *c.readerKind, "continuity", policy, "workers", *c.workers)
	return reader, extractor, nil
}
