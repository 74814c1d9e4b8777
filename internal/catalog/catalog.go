// internal/catalog/catalog.go
//
// SQLite-backed word catalog. Satisfies words.Catalog.
//
// Schema (see migrations/):
//   words(id, text UNIQUE, length, difficulty, enabled)
//   packs(id, name, enabled)
//   pack_words(pack_id, word_id)
//
// Word text is stored uppercase.

package catalog

import (
	"context"
	"database/sql"
	"strings"

	"github.com/wordbuddy/puzzle-server/internal/words"
)

// Catalog queries the word tables of an open database.
type Catalog struct {
	db *sql.DB
}

// New wraps db. The schema must already be migrated.
func New(db *sql.DB) *Catalog { return &Catalog{db: db} }

// EnabledWords returns enabled words whose length is in lengths.
func (c *Catalog) EnabledWords(ctx context.Context, lengths []int) ([]words.WordRow, error) {
	if len(lengths) == 0 {
		return nil, nil
	}
	args := make([]any, len(lengths))
	for i, l := range lengths {
		args[i] = l
	}
	q := `SELECT text, length, COALESCE(difficulty, '')
	      FROM words
	      WHERE enabled = 1 AND length IN (?` + strings.Repeat(",?", len(lengths)-1) + `)
	      ORDER BY id`
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []words.WordRow
	for rows.Next() {
		var r words.WordRow
		if err := rows.Scan(&r.Text, &r.Length, &r.Difficulty); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TopicWords lists the words that belong to a pack.
func (c *Catalog) TopicWords(ctx context.Context, topicID string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT w.text
		FROM pack_words pw
		JOIN words w ON w.id = pw.word_id
		WHERE pw.pack_id = ?
		ORDER BY w.id`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Topics lists enabled packs by name.
func (c *Catalog) Topics(ctx context.Context) ([]words.Topic, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, name FROM packs WHERE enabled = 1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []words.Topic
	for rows.Next() {
		var t words.Topic
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
