// internal/words/resolver.go
//
// Word source resolution for a round.
//
// Responsibilities:
//   - Ask the word catalog for enabled words of one length, optionally
//     narrowed to a topic's words.
//   - On any catalog error, malformed rows only, or an empty result, fall back
//     to the bundled list for that length (topic ignored) and say why.
//   - Register every pooled word as known so the target is always guessable.
//   - Resolve "surprise" (no topic) to a random enabled topic; if that fails
//     the pool is unfiltered and labelled "Random".
//
// Nothing here returns an error to the caller.

package words

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wordbuddy/puzzle-server/internal/game"
)

// WordRow is one catalog word.
type WordRow struct {
	Text       string
	Length     int
	Difficulty string
}

// Topic is a named word pack.
type Topic struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RandomTopic labels a surprise round that could not be narrowed to a topic.
var RandomTopic = Topic{Name: "Random"}

// Catalog is the remote word store. Implementations return enabled rows only.
type Catalog interface {
	EnabledWords(ctx context.Context, lengths []int) ([]WordRow, error)
	TopicWords(ctx context.Context, topicID string) ([]string, error)
	Topics(ctx context.Context) ([]Topic, error)
}

// Source tags where a pool came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Pool is the candidate puzzles for one (length, topic) pair.
type Pool struct {
	Length  int           `json:"length"`
	Topic   Topic         `json:"topic"`
	Puzzles []game.Puzzle `json:"-"`
	Source  Source        `json:"source"`
	Detail  string        `json:"detail,omitempty"`
}

// Size is the number of puzzles in the pool.
func (p Pool) Size() int { return len(p.Puzzles) }

var errNoCatalog = errors.New("word catalog unavailable")

// Resolver builds word pools.
type Resolver struct {
	catalog  Catalog
	fallback *Fallback
	checker  *Checker
	randIntn func(n int) int
}

// NewResolver wires a resolver. catalog may be nil (always fallback).
func NewResolver(catalog Catalog, fallback *Fallback, checker *Checker) *Resolver {
	return &Resolver{catalog: catalog, fallback: fallback, checker: checker, randIntn: randomIndex}
}

// Topics lists the catalog's enabled topics.
func (r *Resolver) Topics(ctx context.Context) ([]Topic, error) {
	if r.catalog == nil {
		return nil, errNoCatalog
	}
	return r.catalog.Topics(ctx)
}

// ResolveTopic turns a requested topic id into a labelled topic. An empty id
// means surprise: a random enabled topic, or RandomTopic when none can be had.
func (r *Resolver) ResolveTopic(ctx context.Context, topicID string) Topic {
	topics, err := r.Topics(ctx)
	if topicID != "" {
		for _, t := range topics {
			if t.ID == topicID {
				return t
			}
		}
		return Topic{ID: topicID, Name: topicID}
	}
	if err != nil {
		log.Warn().Err(err).Msg("resolve surprise topic")
		return RandomTopic
	}
	var usable []Topic
	for _, t := range topics {
		if t.ID != "" && t.Name != "" {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return RandomTopic
	}
	return usable[r.randIntn(len(usable))]
}

// Load resolves the topic and loads its pool.
func (r *Resolver) Load(ctx context.Context, length int, topicID string) Pool {
	topic := r.ResolveTopic(ctx, topicID)
	pool := r.LoadWords(ctx, length, topic.ID)
	pool.Topic = topic
	return pool
}

// LoadWords builds the pool for length, narrowed to topicID when set.
func (r *Resolver) LoadWords(ctx context.Context, length int, topicID string) Pool {
	puzzles, err := r.remote(ctx, length, topicID)
	if err == nil && len(puzzles) > 0 {
		r.register(puzzles)
		return Pool{Length: length, Topic: Topic{ID: topicID}, Puzzles: puzzles, Source: SourceRemote}
	}

	var detail string
	switch {
	case err != nil:
		detail = err.Error() + " (using fallback list)"
	case topicID != "":
		detail = "No words available for this pack right now."
	default:
		detail = "No words returned from the catalog."
	}
	log.Warn().Err(err).Int("length", length).Str("topic", topicID).Msg("using fallback word list")

	var fb []game.Puzzle
	if r.fallback != nil {
		fb = r.fallback.Puzzles(length)
	}
	r.register(fb)
	return Pool{Length: length, Puzzles: fb, Source: SourceFallback, Detail: detail}
}

func (r *Resolver) remote(ctx context.Context, length int, topicID string) ([]game.Puzzle, error) {
	if r.catalog == nil {
		return nil, errNoCatalog
	}
	rows, err := r.catalog.EnabledWords(ctx, []int{length})
	if err != nil {
		return nil, fmt.Errorf("query words: %w", err)
	}

	var allowed map[string]struct{}
	if topicID != "" {
		texts, err := r.catalog.TopicWords(ctx, topicID)
		if err != nil {
			return nil, fmt.Errorf("query topic words: %w", err)
		}
		allowed = make(map[string]struct{}, len(texts))
		for _, t := range texts {
			allowed[game.Normalize(t)] = struct{}{}
		}
	}

	seen := make(map[string]struct{}, len(rows))
	out := make([]game.Puzzle, 0, len(rows))
	for _, row := range rows {
		w := game.Normalize(row.Text)
		if row.Length != length || len(w) != length || !game.IsAlpha(w) {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[w]; !ok {
				continue
			}
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, game.Puzzle{Word: w, Hints: game.BuildHints(w)})
	}
	return out, nil
}

func (r *Resolver) register(puzzles []game.Puzzle) {
	if r.checker == nil {
		return
	}
	for _, p := range puzzles {
		r.checker.Register(p.Word)
	}
}
