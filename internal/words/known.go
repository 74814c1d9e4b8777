package words

import (
	"sync"

	"github.com/wordbuddy/puzzle-server/internal/game"
)

// KnownWords is the set of words accepted without a dictionary lookup,
// grouped by length. It only grows.
type KnownWords struct {
	mu       sync.RWMutex
	byLength map[int]map[string]struct{}
}

// NewKnownWords returns an empty set.
func NewKnownWords() *KnownWords {
	return &KnownWords{byLength: make(map[int]map[string]struct{})}
}

// Add registers word under its own length.
func (k *KnownWords) Add(word string) {
	w := game.Normalize(word)
	if w == "" {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	set := k.byLength[len(w)]
	if set == nil {
		set = make(map[string]struct{})
		k.byLength[len(w)] = set
	}
	set[w] = struct{}{}
}

// Has reports whether word is known for length.
func (k *KnownWords) Has(length int, word string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.byLength[length][game.Normalize(word)]
	return ok
}

// Counts returns the number of known words per length.
func (k *KnownWords) Counts() map[int]int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make(map[int]int, len(k.byLength))
	for l, set := range k.byLength {
		out[l] = len(set)
	}
	return out
}
