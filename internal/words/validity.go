// internal/words/validity.go
//
// Word validity checking for typed guesses.
//
// Order of checks:
//   1. Known-word set (pool words, bundled list, earlier hits) → valid, no I/O.
//   2. Lookup cache → cached answer.
//   3. Remote dictionary → cache the answer; a hit also joins the known set.
//
// A dictionary that cannot be reached does not block play: the guess is
// accepted and nothing is cached, so the word is retried next time.
// A definitive "not found" is cached as invalid.

package words

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/wordbuddy/puzzle-server/internal/game"
)

// Dictionary answers whether a single word exists.
// found=false with a nil error is a definitive "not found"; any error is a
// transport failure.
type Dictionary interface {
	Lookup(ctx context.Context, word string) (found bool, err error)
}

// Checker decides whether a guess is a real word.
type Checker struct {
	known *KnownWords
	dict  Dictionary

	mu    sync.RWMutex
	cache map[string]bool

	group singleflight.Group
}

// NewChecker builds a checker over known. dict may be nil, in which case
// unknown words are accepted.
func NewChecker(known *KnownWords, dict Dictionary) *Checker {
	if known == nil {
		known = NewKnownWords()
	}
	return &Checker{known: known, dict: dict, cache: make(map[string]bool)}
}

// Known exposes the known-word set.
func (c *Checker) Known() *KnownWords { return c.known }

// Register marks word as valid without asking the dictionary.
func (c *Checker) Register(word string) {
	w := game.Normalize(word)
	if w == "" {
		return
	}
	c.known.Add(w)
	c.mu.Lock()
	c.cache[w] = true
	c.mu.Unlock()
}

// Cached returns the cached lookup result for word, if any.
func (c *Checker) Cached(word string) (valid, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	valid, ok = c.cache[game.Normalize(word)]
	return valid, ok
}

// IsValidWord reports whether guess is an acceptable word of the given length.
func (c *Checker) IsValidWord(ctx context.Context, length int, guess string) bool {
	w := game.Normalize(guess)
	if w == "" {
		return false
	}
	if c.known.Has(length, w) {
		return true
	}
	if v, ok := c.Cached(w); ok {
		if v {
			c.known.Add(w)
		}
		return v
	}
	if c.dict == nil {
		log.Debug().Str("word", w).Msg("no dictionary configured, accepting guess")
		return true
	}

	// Callers joining the flight share its result, so the first caller going
	// away must not cut the lookup short for the rest.
	lookupCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(w, func() (interface{}, error) {
		found, err := c.dict.Lookup(lookupCtx, w)
		if err != nil {
			return false, err
		}
		c.mu.Lock()
		c.cache[w] = found
		c.mu.Unlock()
		if found {
			c.known.Add(w)
		}
		return found, nil
	})
	if err != nil {
		log.Warn().Err(err).Str("word", w).Msg("dictionary lookup failed, accepting guess")
		return true
	}
	return v.(bool)
}
