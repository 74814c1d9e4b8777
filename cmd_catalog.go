package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wordbuddy/puzzle-server/internal/catalog"
)

// migrateCmd applies pending catalog migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply catalog database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := catalog.Open(cfg.DBDriver, cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := catalog.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		log.Info().Str("db", cfg.DBPath).Msg("migrations applied")
		return nil
	},
}

// seedCmd loads words and packs from a YAML file
var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load words and topic packs into the catalog",
	Long: `Upsert words and packs from a YAML file into the catalog database.
Running the same file twice is harmless.

  words:
    - {text: frog, difficulty: easy}
  packs:
    - id: animals
      name: Animals
      words: [frog, cat]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := catalog.LoadSeedFile(args[0])
		if err != nil {
			return err
		}
		db, err := catalog.Open(cfg.DBDriver, cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := catalog.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		res, err := catalog.Seed(cmd.Context(), db, sf)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d words, %d packs (%d skipped)\n", res.Words, res.Packs, res.Skipped)
		return nil
	},
}
