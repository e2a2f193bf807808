// Package main starts the GophNotes terminal client: it reads configuration,
// sets up logging and the backend client, and runs the interactive shell.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/GophNotes/internal/client/backend"
	"github.com/atinyakov/GophNotes/internal/client/page"
	"github.com/atinyakov/GophNotes/internal/client/shell"
	"github.com/atinyakov/GophNotes/internal/client/storage"
	"github.com/atinyakov/GophNotes/internal/config"
	"github.com/atinyakov/GophNotes/internal/db"
	"github.com/atinyakov/GophNotes/internal/logger"
	"github.com/atinyakov/GophNotes/internal/repository"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if options.ShowVersion {
		fmt.Printf("GophNotes Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient, err := backend.NewHTTPClient(options.CAFile, options.Timeout)
	if err != nil {
		zapLogger.Fatal("cannot create HTTP client", zap.Error(err))
	}

	client := backend.New(options.BackendURL, options.AnonKey,
		backend.WithHTTPClient(httpClient),
		backend.WithSessionStore(storage.NewFileSessionStore(options.SessionFile)),
		backend.WithLogger(zapLogger),
	)

	var notes page.NotesStore = backend.NewRESTNotes(client)
	if options.NotesDriver == config.DriverPostgres {
		conn, err := db.InitPostgres(ctx, options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		defer conn.Close()
		notes = repository.NewPostgresNotesRepository(conn, client)
	}

	zapLogger.Info("starting client",
		zap.String("backend", options.BackendURL),
		zap.String("notes", options.NotesDriver),
	)

	sh := shell.New(client, notes, os.Stdin, os.Stdout, zapLogger)
	if err := sh.Run(ctx, options.StartPage); err != nil {
		zapLogger.Error("shell stopped", zap.Error(err))
	}
}
