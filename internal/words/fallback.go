// internal/words/fallback.go
//
// Bundled fallback word list.
//
// Responsibilities:
//   - Load the fallback puzzles from a file (FALLBACK_WORDS_FILE) or the
//     embedded default in the assets package.
//   - Keep them grouped by length (3, 4, 5).
//
// File format, one puzzle per line:
//   WORD | clue | clue
// Lines starting with '#' and blank lines are skipped. Words that are not
// alphabetic or not a supported length are dropped. A word without clues gets
// the generated letter hints.

package words

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wordbuddy/puzzle-server/assets"
	"github.com/wordbuddy/puzzle-server/internal/game"
)

// SupportedLengths are the word lengths a round can use.
var SupportedLengths = []int{3, 4, 5}

// Supported reports whether n is a playable word length.
func Supported(n int) bool {
	for _, l := range SupportedLengths {
		if l == n {
			return true
		}
	}
	return false
}

// Fallback is the fixed, untopicked word list used when the catalog fails.
type Fallback struct {
	byLength map[int][]game.Puzzle
}

// LoadFallback reads path, or the embedded list when path is empty.
// It is an error for any supported length to end up with no words.
func LoadFallback(path string) (*Fallback, error) {
	var (
		src io.ReadCloser
		err error
	)
	if path == "" {
		src, err = assets.OpenFallback()
	} else {
		src, err = os.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open fallback list: %w", err)
	}
	defer src.Close()
	lines, err := readLines(src)
	if err != nil {
		return nil, fmt.Errorf("read fallback list: %w", err)
	}

	fb := &Fallback{byLength: make(map[int][]game.Puzzle)}
	seen := make(map[string]struct{})
	for _, line := range lines {
		p, ok := parseLine(line)
		if !ok {
			continue
		}
		if _, dup := seen[p.Word]; dup {
			continue
		}
		seen[p.Word] = struct{}{}
		fb.byLength[len(p.Word)] = append(fb.byLength[len(p.Word)], p)
	}
	for _, l := range SupportedLengths {
		if len(fb.byLength[l]) == 0 {
			return nil, fmt.Errorf("fallback list has no %d-letter words", l)
		}
	}
	return fb, nil
}

// readLines returns the trimmed non-blank, non-comment lines of r.
func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// parseLine turns `WORD | clue | clue` into a puzzle.
func parseLine(line string) (game.Puzzle, bool) {
	parts := strings.Split(line, "|")
	w := game.Normalize(parts[0])
	if !game.IsAlpha(w) || !Supported(len(w)) {
		return game.Puzzle{}, false
	}
	var hints []string
	for _, h := range parts[1:] {
		if h = strings.TrimSpace(h); h != "" {
			hints = append(hints, h)
		}
	}
	if len(hints) == 0 {
		hints = game.BuildHints(w)
	}
	return game.Puzzle{Word: w, Hints: hints}, true
}

// Puzzles returns a copy of the fallback puzzles for length.
func (f *Fallback) Puzzles(length int) []game.Puzzle {
	src := f.byLength[length]
	out := make([]game.Puzzle, len(src))
	for i, p := range src {
		out[i] = game.Puzzle{Word: p.Word, Hints: append([]string(nil), p.Hints...)}
	}
	return out
}

// Words lists every fallback word, all lengths.
func (f *Fallback) Words() []string {
	var out []string
	for _, l := range SupportedLengths {
		for _, p := range f.byLength[l] {
			out = append(out, p.Word)
		}
	}
	return out
}
