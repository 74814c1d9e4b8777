package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wordbuddy/puzzle-server/internal/game"
	"github.com/wordbuddy/puzzle-server/internal/words"
)

// SeedFile is the YAML layout accepted by `seed`:
//
//	words:
//	  - {text: frog, difficulty: easy}
//	packs:
//	  - id: animals
//	    name: Animals
//	    words: [frog, cat]
type SeedFile struct {
	Words []SeedWord `yaml:"words"`
	Packs []SeedPack `yaml:"packs"`
}

// SeedWord is one catalog word. Enabled defaults to true.
type SeedWord struct {
	Text       string `yaml:"text"`
	Difficulty string `yaml:"difficulty"`
	Enabled    *bool  `yaml:"enabled"`
}

// SeedPack is one topic pack. Words not listed under `words` are added enabled.
type SeedPack struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Enabled *bool    `yaml:"enabled"`
	Words   []string `yaml:"words"`
}

// SeedResult counts what a seed run wrote.
type SeedResult struct {
	Words   int
	Packs   int
	Skipped int
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(r io.Reader) (*SeedFile, error) {
	var sf SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &sf, nil
}

// LoadSeedFile reads and parses path.
func LoadSeedFile(path string) (*SeedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseSeed(f)
}

// Seed upserts the file's words and packs in one transaction. Words that are
// not alphabetic or not a playable length are skipped and counted.
func Seed(ctx context.Context, db *sql.DB, sf *SeedFile) (SeedResult, error) {
	var res SeedResult
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, w := range sf.Words {
		ok, err := upsertWord(ctx, tx, w.Text, w.Difficulty, enabled(w.Enabled), true)
		if err != nil {
			return res, err
		}
		if ok {
			res.Words++
		} else {
			res.Skipped++
		}
	}

	for _, p := range sf.Packs {
		if p.ID == "" || p.Name == "" {
			res.Skipped++
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO packs (id, name, enabled) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name=excluded.name, enabled=excluded.enabled`,
			p.ID, p.Name, boolInt(enabled(p.Enabled))); err != nil {
			return res, fmt.Errorf("upsert pack %s: %w", p.ID, err)
		}
		res.Packs++

		for _, text := range p.Words {
			ok, err := upsertWord(ctx, tx, text, "", true, false)
			if err != nil {
				return res, err
			}
			if !ok {
				res.Skipped++
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO pack_words (pack_id, word_id)
				SELECT ?, id FROM words WHERE text = ?`, p.ID, game.Normalize(text)); err != nil {
				return res, fmt.Errorf("link %s to %s: %w", text, p.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return res, err
	}
	return res, nil
}

// upsertWord inserts text; overwrite controls whether an existing row's
// difficulty/enabled flags are replaced.
func upsertWord(ctx context.Context, tx *sql.Tx, text, difficulty string, on, overwrite bool) (bool, error) {
	w := game.Normalize(text)
	if !game.IsAlpha(w) || !words.Supported(len(w)) {
		return false, nil
	}
	var diff any
	if difficulty != "" {
		diff = difficulty
	}
	q := `INSERT INTO words (text, length, difficulty, enabled) VALUES (?, ?, ?, ?)
	      ON CONFLICT(text) DO NOTHING`
	if overwrite {
		q = `INSERT INTO words (text, length, difficulty, enabled) VALUES (?, ?, ?, ?)
		     ON CONFLICT(text) DO UPDATE SET difficulty=excluded.difficulty, enabled=excluded.enabled`
	}
	if _, err := tx.ExecContext(ctx, q, w, len(w), diff, boolInt(on)); err != nil {
		return false, fmt.Errorf("upsert word %s: %w", w, err)
	}
	return true, nil
}

func enabled(b *bool) bool { return b == nil || *b }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
