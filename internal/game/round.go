// internal/game/round.go
//
// Round state machine for a single puzzle.
// Responsibilities:
//   - Hold one puzzle and the guesses made against it (default limit 6).
//   - Check and apply guesses (length, alphabetic); word validity is the
//     caller's job.
//   - Track transitions: guessing → solved | bonus_offered → guessing
//     (extended to 7) → solved | out_of_tries.
//   - Reveal hints one at a time, monotonically.
//   - Report the outcome to a Recorder exactly once per round.
//
// A Round is not safe for concurrent use; the engine serialises access.
// The record latch is atomic so a racing caller still cannot double-count.
package game

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxGuesses is the guess limit before any bonus retry.
const MaxGuesses = 6

// Round is the live state for one drawn puzzle.
type Round struct {
	id        string
	puzzle    Puzzle
	guesses   []GuessRecord
	keyboard  map[string]LetterStatus
	revealed  []bool
	bonusUsed bool
	phase     Phase
	message   string

	recorder Recorder
	recorded atomic.Bool
}

// NewRound starts a round on a copy of p. rec may be nil.
func NewRound(p Puzzle, rec Recorder) *Round {
	p = p.clone()
	p.Word = Normalize(p.Word)
	return &Round{
		id:       uuid.NewString(),
		puzzle:   p,
		guesses:  []GuessRecord{},
		keyboard: map[string]LetterStatus{},
		revealed: make([]bool, len(p.Hints)),
		phase:    PhaseGuessing,
		recorder: rec,
	}
}

// ID returns the round identifier.
func (r *Round) ID() string { return r.id }

// Phase returns the current phase.
func (r *Round) Phase() Phase { return r.phase }

// Length is the target word length.
func (r *Round) Length() int { return len(r.puzzle.Word) }

// Recorded reports whether the outcome has been sent to the recorder.
func (r *Round) Recorded() bool { return r.recorded.Load() }

// AllowedGuesses is 6, or 7 once the bonus retry was taken.
func (r *Round) AllowedGuesses() int {
	if r.bonusUsed {
		return MaxGuesses + 1
	}
	return MaxGuesses
}

// TriesLeft is how many guesses remain under the current limit.
func (r *Round) TriesLeft() int {
	return max(0, r.AllowedGuesses()-len(r.guesses))
}

// HintsLeft is the number of hints not yet revealed.
func (r *Round) HintsLeft() int {
	n := 0
	for _, ok := range r.revealed {
		if !ok {
			n++
		}
	}
	return n
}

// Precheck normalises guess and rejects it if the round cannot take it.
// It never changes the guess record.
func (r *Round) Precheck(guess string) (string, error) {
	switch r.phase {
	case PhaseSolved:
		r.message = "Nice! Head home to try a new word."
		return "", ErrRoundOver
	case PhaseBonusOffered:
		r.message = "Take your bonus try or pick a new word."
		return "", ErrRoundOver
	case PhaseOutOfTries:
		r.message = fmt.Sprintf("The word was %s.", r.puzzle.Word)
		return "", ErrRoundOver
	}
	g := Normalize(guess)
	if len(g) != len(r.puzzle.Word) || !IsAlpha(g) {
		r.message = "Finish the word first!"
		return "", ErrIncomplete
	}
	return g, nil
}

// SetMessage replaces the transient status line.
func (r *Round) SetMessage(msg string) { r.message = msg }

// Apply scores an already-validated word and advances the round.
func (r *Round) Apply(ctx context.Context, guess string) ([]LetterStatus, error) {
	g, err := r.Precheck(guess)
	if err != nil {
		return nil, err
	}

	marks := Evaluate(g, r.puzzle.Word)
	r.guesses = append(r.guesses, GuessRecord{Guess: g, Marks: marks})
	r.updateKeyboard(g, marks)
	r.message = ""

	switch {
	case g == r.puzzle.Word:
		r.phase = PhaseSolved
		r.message = "You did it!"
		r.settle(ctx, true)
	case len(r.guesses) >= r.AllowedGuesses():
		if r.bonusUsed {
			r.phase = PhaseOutOfTries
			r.message = fmt.Sprintf("The word was %s.", r.puzzle.Word)
			r.settle(ctx, false)
			break
		}
		r.phase = PhaseBonusOffered
		r.message = "So close! You earned a bonus try."
		if r.HintsLeft() > 0 {
			r.message += " You still have a hint for another try!"
		}
	}
	return marks, nil
}

// updateKeyboard merges marks into the letter map; a letter is never downgraded.
func (r *Round) updateKeyboard(guess string, marks []LetterStatus) {
	for i, m := range marks {
		k := guess[i : i+1]
		if m.rank() > r.keyboard[k].rank() {
			r.keyboard[k] = m
		}
	}
}

// AcceptBonusRetry raises the limit by one. Only valid while a bonus is offered,
// which happens at most once per round.
func (r *Round) AcceptBonusRetry() error {
	if r.phase != PhaseBonusOffered {
		return ErrNoBonusOffered
	}
	r.bonusUsed = true
	r.phase = PhaseGuessing
	if r.HintsLeft() > 0 {
		r.message = "Final guess unlocked! Peek at your hint if you need a boost."
	} else {
		r.message = "Final guess unlocked! You can do this!"
	}
	return nil
}

// Decline finalises a round that is out of tries (bonus on offer or not) as a
// loss. It is also what happens when the player walks away from such a round.
// Reports whether this call wrote the loss.
func (r *Round) Decline(ctx context.Context) bool {
	if r.phase != PhaseBonusOffered && r.phase != PhaseOutOfTries {
		return false
	}
	r.phase = PhaseOutOfTries
	r.message = fmt.Sprintf("The word was %s.", r.puzzle.Word)
	return r.settle(ctx, false)
}

// settle reports the outcome once. Later calls are no-ops.
func (r *Round) settle(ctx context.Context, win bool) bool {
	if !r.recorded.CompareAndSwap(false, true) {
		return false
	}
	if r.recorder == nil {
		return true
	}
	if err := r.recorder.RecordGame(ctx, win); err != nil {
		log.Warn().Err(err).Str("round", r.id).Bool("win", win).Msg("record game")
	}
	return true
}

// RevealHint shows hint i. Revealing an already shown hint is a no-op.
func (r *Round) RevealHint(i int) error {
	if i < 0 || i >= len(r.revealed) {
		return ErrHintIndex
	}
	r.revealed[i] = true
	return nil
}

// HighlightHints is an advisory nudge: a hint is still hidden and the player
// is on their last try or looking at the bonus offer.
func (r *Round) HighlightHints() bool {
	if r.phase == PhaseSolved || r.HintsLeft() == 0 {
		return false
	}
	if r.phase == PhaseBonusOffered {
		return true
	}
	return r.phase == PhaseGuessing && r.TriesLeft() == 1
}

// State snapshots the round.
func (r *Round) State() State {
	st := State{
		ID:                r.id,
		Length:            len(r.puzzle.Word),
		Phase:             r.phase,
		Guesses:           make([]GuessRecord, len(r.guesses)),
		Keyboard:          make(map[string]LetterStatus, len(r.keyboard)),
		HasUsedBonusRetry: r.bonusUsed,
		RevealedHints:     append([]bool(nil), r.revealed...),
		Hints:             make([]string, len(r.puzzle.Hints)),
		AllowedGuesses:    r.AllowedGuesses(),
		TriesLeft:         r.TriesLeft(),
		HintsLeft:         r.HintsLeft(),
		HighlightHints:    r.HighlightHints(),
		Message:           r.message,
	}
	for i, g := range r.guesses {
		st.Guesses[i] = GuessRecord{Guess: g.Guess, Marks: append([]LetterStatus(nil), g.Marks...)}
	}
	for k, v := range r.keyboard {
		st.Keyboard[k] = v
	}
	for i, ok := range r.revealed {
		if ok {
			st.Hints[i] = r.puzzle.Hints[i]
		}
	}
	if r.phase == PhaseSolved || r.phase == PhaseOutOfTries {
		st.Answer = r.puzzle.Word
	}
	return st
}
