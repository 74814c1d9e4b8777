package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wordbuddy/puzzle-server/internal/config"
)

// cfg is filled in by the root command before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "puzzle-server",
	Short: "Word puzzle rounds over HTTP",
	Long: `Serves guess-the-word rounds (3, 4 or 5 letters) with hints, a one-time
bonus try and a per-player win ledger. Words come from a SQLite catalog,
falling back to a bundled list.

Running without a subcommand is the same as "serve".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		setupLogging(cfg)
		return nil
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("exiting")
		stop()
		os.Exit(1)
	}
}

func setupLogging(c config.Config) {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if c.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
