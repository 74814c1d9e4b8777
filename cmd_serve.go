package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wordbuddy/puzzle-server/internal/catalog"
	"github.com/wordbuddy/puzzle-server/internal/dictionary"
	"github.com/wordbuddy/puzzle-server/internal/engine"
	"github.com/wordbuddy/puzzle-server/internal/httpserver"
	"github.com/wordbuddy/puzzle-server/internal/kv"
	"github.com/wordbuddy/puzzle-server/internal/store"
	"github.com/wordbuddy/puzzle-server/internal/words"
)

// serveCmd runs the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Open (and migrate) the catalog database, load the fallback list and
serve rounds on PORT until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := catalog.Open(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := catalog.Migrate(ctx, db); err != nil {
		return err
	}
	ledgers, err := kv.NewSQLite(ctx, db)
	if err != nil {
		return err
	}

	fb, err := words.LoadFallback(cfg.FallbackWordsFile)
	if err != nil {
		return err
	}
	known := words.NewKnownWords()
	for _, w := range fb.Words() {
		known.Add(w)
	}
	checker := words.NewChecker(known, dictionary.New(cfg.DictionaryURL, cfg.DictionaryTimeout))
	resolver := words.NewResolver(catalog.New(db), fb, checker)

	sessions := store.NewMemoryStore(store.EngineFactory(resolver, checker, ledgers, engine.WithPickSalt(cfg.PickSalt)))
	go sessions.RunSweeper(ctx, time.Minute, cfg.SessionIdle)

	srv := httpserver.New(httpserver.Options{
		Sessions:     sessions,
		Topics:       resolver,
		Known:        known,
		Secret:       cfg.SessionSecret,
		ClientOrigin: cfg.ClientOrigin,
		Secure:       cfg.Production,
	})
	hs := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()
	log.Info().
		Str("addr", hs.Addr).
		Str("db", cfg.DBPath).
		Str("driver", cfg.DBDriver).
		Interface("known", known.Counts()).
		Msg("starting puzzle-server")

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}
