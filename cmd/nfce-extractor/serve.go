package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/peterbourgon/ff/v4"

	"github.com/zombor/nfce-extractor/internal/receipt"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(parent *ff.FlagSet, cfg *rootConfig) *ff.Command {
	fs := ff.NewFlagSet("serve").SetParent(parent)
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "nfce-extractor.db", "Database file path")
		storagePath = fs.StringLong("storage", "./uploads", "Storage directory path")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		maxUploadMB = fs.IntLong("max-upload-mb", 50, "Maximum upload size in MB")
	)

	return &ff.Command{
		Name:      "serve",
		Usage:     "nfce-extractor serve [FLAGS]",
		ShortHelp: "Run the HTTP API",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			reader, extractor, err := cfg.pipeline()
			if err != nil {
				return err
			}
			defer reader.Close()

			slog.Info("Initializing database...")
			db, err := receipt.NewBoltDB(*dbPath)
			if err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}
			defer db.Close()

			slog.Info("Initializing storage...")
			store, err := receipt.NewLocalStorage(*storagePath)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}

			service := receipt.NewService(db, reader, store, extractor)
			server := receipt.NewServer(service, receipt.ServerConfig{
				Auth: receipt.BasicAuth{
					Username: *authUser,
					Password: *authPass,
				},
				MaxUploadBytes: int64(*maxUploadMB) << 20,
			})

			return serve(ctx, fmt.Sprintf(":%d", *port), server.Handler(), *authUser != "" || *authPass != "")
		},
	}
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
func serve(ctx context.Context, addr string, handler http.Handler, authEnabled bool) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "address", addr)
		errc <- httpServer.ListenAndServe()
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if authEnabled {
		slog.Info("Basic auth enabled")
	}

	select {
	case err := <-errc:
		return fmt.Errorf("running server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
