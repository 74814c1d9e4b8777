// internal/game/types.go
//
// Core type definitions for the puzzle round engine.
// Defines:
//   - LetterStatus: per-letter result of a guess (correct/present/absent).
//   - Puzzle: the secret word plus its ordered hints.
//   - GuessRecord: one scored guess.
//   - Phase: where a round is in its lifecycle.
//   - State: JSON snapshot of a round handed to callers.

package game

import (
	"context"
	"errors"
)

// LetterStatus represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": letter is in the word and in the right spot.
//   - "present": letter is in the word but somewhere else.
//   - "absent":  letter is not in the word (or every copy is already used).
type LetterStatus string

const (
	StatusCorrect LetterStatus = "correct"
	StatusPresent LetterStatus = "present"
	StatusAbsent  LetterStatus = "absent"
)

// rank orders statuses for the keyboard map: correct > present > absent.
func (s LetterStatus) rank() int {
	switch s {
	case StatusCorrect:
		return 3
	case StatusPresent:
		return 2
	case StatusAbsent:
		return 1
	}
	return 0
}

// Puzzle is the secret word for one round and the hints that go with it.
// Word is always uppercase.
type Puzzle struct {
	Word  string   `json:"word"`
	Hints []string `json:"hints"`
}

// clone returns a copy whose hint slice is not shared with the pool.
func (p Puzzle) clone() Puzzle {
	return Puzzle{Word: p.Word, Hints: append([]string(nil), p.Hints...)}
}

// GuessRecord is one accepted guess and its marks.
type GuessRecord struct {
	Guess string         `json:"guess"`
	Marks []LetterStatus `json:"marks"`
}

// Phase is the coarse state of a round.
type Phase string

const (
	PhaseGuessing     Phase = "guessing"
	PhaseSolved       Phase = "solved"
	PhaseBonusOffered Phase = "bonus_offered"
	PhaseOutOfTries   Phase = "out_of_tries"
)

// Terminal reports whether no further guesses can be made in this phase
// without the player accepting a bonus retry.
func (p Phase) Terminal() bool {
	return p != PhaseGuessing
}

// Recorder receives the outcome of a round. Implemented by the stats ledger.
type Recorder interface {
	RecordGame(ctx context.Context, win bool) error
}

// Input rejections. None of these mutate the round.
var (
	ErrRoundOver      = errors.New("round is over")
	ErrIncomplete     = errors.New("guess is not the right length")
	ErrHintIndex      = errors.New("no such hint")
	ErrNoBonusOffered = errors.New("no bonus retry on offer")
)

// State is a point-in-time copy of a round, safe to hand to callers.
type State struct {
	ID                string                  `json:"id"`
	Length            int                     `json:"length"`
	Phase             Phase                   `json:"phase"`
	Guesses           []GuessRecord           `json:"guesses"`
	Keyboard          map[string]LetterStatus `json:"keyboard"`
	HasUsedBonusRetry bool                    `json:"hasUsedBonusRetry"`
	RevealedHints     []bool                  `json:"revealedHints"`
	Hints             []string                `json:"hints"` // revealed text only; hidden slots are ""
	AllowedGuesses    int                     `json:"allowedGuesses"`
	TriesLeft         int                     `json:"triesLeft"`
	HintsLeft         int                     `json:"hintsLeft"`
	HighlightHints    bool                    `json:"highlightHints"`
	Answer            string                  `json:"answer,omitempty"`
	Message           string                  `json:"message,omitempty"`
}
