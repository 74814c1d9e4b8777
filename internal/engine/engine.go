// internal/engine/engine.go
//
// Per-player puzzle engine.
// Responsibilities:
//   - Start rounds: resolve the topic, load (or reuse) the word pool for the
//     requested length/topic, draw a puzzle, build a fresh Round.
//   - Submit guesses: round checks, dictionary validation, scoring.
//   - Hints, bonus retry, declining the bonus, stats.
//
// Concurrency:
//   - One guess at a time: a submission that arrives while another is being
//     validated gets ErrBusy and changes nothing.
//   - Validation runs without the engine lock; if the round was replaced in
//     the meantime the guess is dropped with ErrStaleRound.
//   - Pool loads are numbered; a load overtaken by a newer StartRound is
//     discarded with ErrStaleLoad.

package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/wordbuddy/puzzle-server/internal/game"
	"github.com/wordbuddy/puzzle-server/internal/stats"
	"github.com/wordbuddy/puzzle-server/internal/words"
)

var (
	ErrNoRound           = errors.New("no active round")
	ErrBusy              = errors.New("a guess is already being checked")
	ErrNotAWord          = errors.New("not a word")
	ErrStaleRound        = errors.New("round changed while the guess was checked")
	ErrStaleLoad         = errors.New("word load superseded by a newer request")
	ErrUnsupportedLength = errors.New("unsupported word length")
	ErrNoWords           = errors.New("no words available")
)

// Loader produces word pools. Implemented by *words.Resolver.
type Loader interface {
	Load(ctx context.Context, length int, topicID string) words.Pool
}

// Validator decides whether a guess is a real word. Implemented by *words.Checker.
type Validator interface {
	IsValidWord(ctx context.Context, length int, guess string) bool
}

// Ledger records outcomes and reports stats. Implemented by *stats.Ledger.
type Ledger interface {
	game.Recorder
	Stats(ctx context.Context) (stats.Stats, error)
}

// View is the round plus where its words came from.
type View struct {
	Round game.State `json:"round"`
	Pool  words.Pool `json:"pool"`
}

// GuessResult is the outcome of SubmitGuess.
type GuessResult struct {
	Accepted   bool                `json:"accepted"`
	Evaluation []game.LetterStatus `json:"evaluation,omitempty"`
	Round      game.State          `json:"round"`
}

type poolKey struct {
	length int
	topic  string
}

// Engine runs rounds for one player.
type Engine struct {
	loader    Loader
	validator Validator
	ledger    Ledger
	salt      string

	mu      sync.Mutex
	round   *game.Round
	pool    words.Pool
	key     poolKey
	hasPool bool

	loadGen  atomic.Uint64
	inFlight atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithPickSalt sets the HMAC salt used for seeded puzzle draws.
func WithPickSalt(salt string) Option {
	return func(e *Engine) { e.salt = salt }
}

// New builds an engine. ledger may be nil (outcomes are not kept).
func New(loader Loader, validator Validator, ledger Ledger, opts ...Option) *Engine {
	e := &Engine{loader: loader, validator: validator, ledger: ledger}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) recorder() game.Recorder {
	if e.ledger == nil {
		return nil
	}
	return e.ledger
}

// StartRound draws a new puzzle of the given length, optionally from a topic.
// An empty topicID asks for a surprise topic. A pool drawn from the catalog
// for a named topic is kept while length and topic stay the same; surprise
// and fallback pools are rebuilt every round so a recovered catalog is picked
// up again. A non-empty seed makes the draw repeatable.
func (e *Engine) StartRound(ctx context.Context, length int, topicID, seed string) (View, error) {
	if !words.Supported(length) {
		return View{}, ErrUnsupportedLength
	}
	gen := e.loadGen.Add(1)
	key := poolKey{length: length, topic: topicID}

	e.mu.Lock()
	pool, reuse := e.pool, e.hasPool && e.key == key && topicID != "" && e.pool.Source == words.SourceRemote
	e.mu.Unlock()

	if !reuse {
		pool = e.loader.Load(ctx, length, topicID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loadGen.Load() != gen {
		log.Debug().Int("length", length).Str("topic", topicID).Msg("discarding stale word load")
		return View{}, ErrStaleLoad
	}
	if err := ctx.Err(); err != nil {
		return View{}, err
	}

	puzzle, ok := pool.Pick(seed, e.salt)
	if !ok {
		return View{}, ErrNoWords
	}

	// Walking away from a round that is out of tries counts as a loss.
	if e.round != nil {
		e.round.Decline(ctx)
	}
	e.pool, e.key, e.hasPool = pool, key, true
	e.round = game.NewRound(puzzle, e.recorder())

	log.Debug().
		Str("round", e.round.ID()).
		Int("length", length).
		Str("topic", pool.Topic.Name).
		Str("source", string(pool.Source)).
		Msg("round started")
	return View{Round: e.round.State(), Pool: e.pool}, nil
}

// Round returns the current round.
func (e *Engine) Round() (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.round == nil {
		return View{}, ErrNoRound
	}
	return View{Round: e.round.State(), Pool: e.pool}, nil
}

// Pool returns the pool the current round was drawn from.
func (e *Engine) Pool() (words.Pool, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool, e.hasPool
}

// SubmitGuess checks, validates and scores text against the current puzzle.
// Rejections come back as errors alongside the unchanged round state.
func (e *Engine) SubmitGuess(ctx context.Context, text string) (GuessResult, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return GuessResult{}, ErrBusy
	}
	defer e.inFlight.Store(false)

	e.mu.Lock()
	r := e.round
	if r == nil {
		e.mu.Unlock()
		return GuessResult{}, ErrNoRound
	}
	guess, err := r.Precheck(text)
	if err != nil {
		st := r.State()
		e.mu.Unlock()
		return GuessResult{Round: st}, err
	}
	length := r.Length()
	e.mu.Unlock()

	valid := e.validator == nil || e.validator.IsValidWord(ctx, length, guess)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.round != r {
		return GuessResult{Round: e.round.State()}, ErrStaleRound
	}
	if !valid {
		r.SetMessage("Not a word. Try again!")
		return GuessResult{Round: r.State()}, ErrNotAWord
	}
	marks, err := r.Apply(ctx, guess)
	if err != nil {
		return GuessResult{Round: r.State()}, err
	}
	return GuessResult{Accepted: true, Evaluation: marks, Round: r.State()}, nil
}

// RevealHint shows hint index of the current round.
func (e *Engine) RevealHint(index int) (game.State, error) {
	return e.withRound(func(r *game.Round) error { return r.RevealHint(index) })
}

// AcceptBonusRetry takes the one-time extra guess.
func (e *Engine) AcceptBonusRetry() (game.State, error) {
	return e.withRound(func(r *game.Round) error { return r.AcceptBonusRetry() })
}

// DeclineBonusRetry finalises an out-of-tries round as a loss. The loss is
// written at most once no matter how often this or StartRound runs after it.
func (e *Engine) DeclineBonusRetry(ctx context.Context) (game.State, error) {
	return e.withRound(func(r *game.Round) error {
		if p := r.Phase(); p != game.PhaseBonusOffered && p != game.PhaseOutOfTries {
			return game.ErrNoBonusOffered
		}
		r.Decline(ctx)
		return nil
	})
}

// Leave is called when the player navigates away from the round.
func (e *Engine) Leave(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.round != nil {
		e.round.Decline(ctx)
	}
}

// Stats returns the player's win summary.
func (e *Engine) Stats(ctx context.Context) (stats.Stats, error) {
	if e.ledger == nil {
		return stats.Stats{}, nil
	}
	return e.ledger.Stats(ctx)
}

func (e *Engine) withRound(fn func(r *game.Round) error) (game.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.round == nil {
		return game.State{}, ErrNoRound
	}
	err := fn(e.round)
	return e.round.State(), err
}
