// internal/stats/ledger.go
//
// Win/loss ledger for one player (one installation).
//
// Storage layout (kv.Store):
//   "tlw-anon-id" → "tlw_anon_<uuid>"                     stable installation id
//   "tlw-stats"   → {"anonId": "...", "games": [{date, win}]}  append-only log
//
// Every call is read-modify-write under the ledger's mutex. Records are never
// edited or removed.

package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wordbuddy/puzzle-server/internal/kv"
)

const (
	StorageKey   = "tlw-stats"
	AnonIDKey    = "tlw-anon-id"
	anonIDPrefix = "tlw_anon_"
)

// GameRecord is one finished round.
type GameRecord struct {
	Date string `json:"date"` // YYYY-MM-DD, local calendar day
	Win  bool   `json:"win"`
}

// Storage is the persisted blob.
type Storage struct {
	AnonID string       `json:"anonId"`
	Games  []GameRecord `json:"games"`
}

// Stats is the derived summary shown to the player.
type Stats struct {
	WinsToday  int `json:"winsToday"`
	Streak     int `json:"streak"`
	TotalGames int `json:"totalGames"`
}

// Ledger records round outcomes in a kv.Store.
type Ledger struct {
	mu     sync.Mutex // serialises read-modify-write of the stored blob
	store  kv.Store
	now    func() time.Time
	anonID string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now; the clock's location decides the calendar day.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithAnonID makes id the installation id when none is stored yet.
func WithAnonID(id string) Option {
	return func(l *Ledger) { l.anonID = id }
}

// NewLedger returns a ledger over store.
func NewLedger(store kv.Store, opts ...Option) *Ledger {
	l := &Ledger{store: store, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

// NewAnonID mints a fresh anonymous installation id.
func NewAnonID() string {
	return anonIDPrefix + uuid.NewString()
}

// DayKey formats t as a calendar day in t's own location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// AnonID returns the installation id, creating it on first use.
func (l *Ledger) AnonID(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.anon(ctx)
}

func (l *Ledger) anon(ctx context.Context) (string, error) {
	id, ok, err := l.store.Get(ctx, AnonIDKey)
	if err != nil {
		return "", fmt.Errorf("read anon id: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}
	id = l.anonID
	if id == "" {
		id = NewAnonID()
	}
	if err := l.store.Set(ctx, AnonIDKey, id); err != nil {
		return "", fmt.Errorf("write anon id: %w", err)
	}
	return id, nil
}

// Ensure loads the stored blob, initialising it when absent or unreadable.
func (l *Ledger) Ensure(ctx context.Context) (Storage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ensure(ctx)
}

func (l *Ledger) ensure(ctx context.Context) (Storage, error) {
	anonID, err := l.anon(ctx)
	if err != nil {
		return Storage{}, err
	}
	if s, ok, err := l.load(ctx); err != nil {
		return Storage{}, err
	} else if ok && s.AnonID != "" {
		return s, nil
	}
	s := Storage{AnonID: anonID, Games: []GameRecord{}}
	return s, l.save(ctx, s)
}

func (l *Ledger) load(ctx context.Context) (Storage, bool, error) {
	raw, ok, err := l.store.Get(ctx, StorageKey)
	if err != nil {
		return Storage{}, false, fmt.Errorf("read stats: %w", err)
	}
	if !ok || raw == "" {
		return Storage{}, false, nil
	}
	var s Storage
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		log.Warn().Err(err).Msg("stats blob unreadable, starting over")
		return Storage{}, false, nil
	}
	return s, true, nil
}

func (l *Ledger) save(ctx context.Context, s Storage) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := l.store.Set(ctx, StorageKey, string(b)); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	return nil
}

// RecordGame appends today's outcome.
func (l *Ledger) RecordGame(ctx context.Context, win bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.ensure(ctx)
	if err != nil {
		return err
	}
	s.Games = append(s.Games, GameRecord{Date: DayKey(l.now()), Win: win})
	return l.save(ctx, s)
}

// Stats summarises the ledger as of now.
func (l *Ledger) Stats(ctx context.Context) (Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.ensure(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Compute(s.Games, l.now()), nil
}

// Compute derives wins today, the consecutive-day win streak ending today,
// and the total number of games.
func Compute(games []GameRecord, today time.Time) Stats {
	key := DayKey(today)
	winDays := make(map[string]bool)
	st := Stats{TotalGames: len(games)}
	for _, g := range games {
		if !g.Win {
			continue
		}
		winDays[g.Date] = true
		if g.Date == key {
			st.WinsToday++
		}
	}

	// Walk back from noon so DST shifts never skip or repeat a day.
	d := time.Date(today.Year(), today.Month(), today.Day(), 12, 0, 0, 0, today.Location())
	for winDays[DayKey(d)] {
		st.Streak++
		d = d.AddDate(0, 0, -1)
	}
	return st
}
