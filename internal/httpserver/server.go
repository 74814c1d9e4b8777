// internal/httpserver/server.go
//
// HTTP server wiring for the puzzle engine.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/topics", "/debug/words".
//   - Round endpoints under /round, one engine per player.
//   - Player identity: a signed anonymous cookie (no accounts).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled so the player cookie
//     survives a split front end.
//   - Rejected moves come back as {"error", "message", "round"} so the client
//     can show the message and keep rendering the unchanged round.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/wordbuddy/puzzle-server/internal/engine"
	"github.com/wordbuddy/puzzle-server/internal/game"
	"github.com/wordbuddy/puzzle-server/internal/store"
	"github.com/wordbuddy/puzzle-server/internal/words"
)

// TopicLister lists selectable topics. Implemented by *words.Resolver.
type TopicLister interface {
	Topics(ctx context.Context) ([]words.Topic, error)
}

// Options wires a Server.
type Options struct {
	Sessions     store.Store
	Topics       TopicLister
	Known        *words.KnownWords
	Secret       string
	ClientOrigin string
	Secure       bool // production cookies: Secure + SameSite=None

	// Now decides the calendar day of daily rounds; time.Now when nil.
	Now func() time.Time
}

// Server bundles router and player sessions.
type Server struct {
	r        *chi.Mux
	sessions store.Store
	topics   TopicLister
	known    *words.KnownWords
	cookies  cookieJar
	now      func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(o Options) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		sessions: o.Sessions,
		topics:   o.Topics,
		known:    o.Known,
		cookies:  cookieJar{secret: []byte(o.Secret), secure: o.Secure},
		now:      o.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(o.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "word-buddy",
			"endpoints": []string{
				"/health", "/topics", "/stats", "/debug/words",
				"GET /round", "POST /round/new", "POST /round/guess", "POST /round/hint",
				"POST /round/retry", "POST /round/decline", "POST /round/leave",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/topics", s.handleTopics)
	s.r.Get("/debug/words", s.handleDebugWords)

	// --- player routes ---
	s.r.Group(func(r chi.Router) {
		r.Use(s.withPlayer)
		r.Get("/stats", s.handleStats)
		r.Route("/round", func(r chi.Router) {
			r.Get("/", s.handleRound)
			r.Post("/new", s.handleNewRound)
			r.Post("/guess", s.handleGuess)
			r.Post("/hint", s.handleHint)
			r.Post("/retry", s.handleRetry)
			r.Post("/decline", s.handleDecline)
			r.Post("/leave", s.handleLeave)
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests and http.Server).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ctxPlayerKey is the context key type for the player id.
type ctxPlayerKey struct{}

// withPlayer attaches the player id, minting a new anonymous player (and
// cookie) when the request carries no valid token.
func (s *Server) withPlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.cookies.player(r)
		if !ok {
			var err error
			if id, err = s.cookies.issue(w); err != nil {
				log.Error().Err(err).Msg("issue player cookie")
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "sign_failed"})
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxPlayerKey{}, id)))
	})
}

// engineFor returns the caller's engine or writes an error.
func (s *Server) engineFor(w http.ResponseWriter, r *http.Request) (*engine.Engine, bool) {
	id, _ := r.Context().Value(ctxPlayerKey{}).(string)
	eng, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("player", id).Msg("load session")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session_failed"})
		return nil, false
	}
	return eng, true
}

// ------------------------------ PUBLIC -------------------------------------

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.topics.Topics(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("list topics")
		writeJSON(w, http.StatusOK, map[string]any{"topics": []words.Topic{}, "detail": err.Error()})
		return
	}
	if topics == nil {
		topics = []words.Topic{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

func (s *Server) handleDebugWords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"known":    s.known.Counts(),
		"sessions": s.sessions.Len(),
	})
}

// ------------------------------- ROUND -------------------------------------

// newRoundReq is the POST /round/new payload. Length defaults to 5; an empty
// topicId asks for a surprise topic; seed makes the draw repeatable and daily
// uses the same seed for every player today.
type newRoundReq struct {
	Length  int    `json:"length"`
	TopicID string `json:"topicId"`
	Seed    string `json:"seed"`
	Daily   bool   `json:"daily"`
}

type guessReq struct {
	Guess string `json:"guess"`
}

type hintReq struct {
	Index *int `json:"index"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	st, err := eng.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("read stats")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "stats_failed"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	v, err := eng.Round()
	if err != nil {
		writeErr(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	var req newRoundReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
			return
		}
	}
	if req.Length == 0 {
		req.Length = 5
	}
	if req.Daily {
		req.Seed = words.DailySeed(s.now())
	}
	eng, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	v, err := eng.StartRound(r.Context(), req.Length, req.TopicID, req.Seed)
	if err != nil {
		writeErr(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	eng, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	res, err := eng.SubmitGuess(r.Context(), req.Guess)
	if err != nil {
		writeErr(w, err, &res.Round)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	var req hintReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	eng, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	st, err := eng.RevealHint(*req.Index)
	s.respondRound(w, st, err)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	st, err := eng.AcceptBonusRetry()
	s.respondRound(w, st, err)
}

func (s *Server) handleDecline(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	st, err := eng.DeclineBonusRetry(r.Context())
	s.respondRound(w, st, err)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	eng.Leave(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) respondRound(w http.ResponseWriter, st game.State, err error) {
	if err != nil {
		writeErr(w, err, &st)
		return
	}
	writeJSON(w, http.StatusOK, map[string]game.State{"round": st})
}

// ------------------------------- errors ------------------------------------

type errorBody struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Round   *game.State `json:"round,omitempty"`
}

// classify maps engine and round errors to a status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, engine.ErrNoRound):
		return http.StatusNotFound, "no_round"
	case errors.Is(err, engine.ErrUnsupportedLength):
		return http.StatusBadRequest, "unsupported_length"
	case errors.Is(err, engine.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, engine.ErrStaleRound):
		return http.StatusConflict, "stale_round"
	case errors.Is(err, engine.ErrStaleLoad):
		return http.StatusConflict, "stale_load"
	case errors.Is(err, game.ErrRoundOver):
		return http.StatusConflict, "round_over"
	case errors.Is(err, game.ErrNoBonusOffered):
		return http.StatusConflict, "no_bonus_offered"
	case errors.Is(err, engine.ErrNotAWord):
		return http.StatusUnprocessableEntity, "not_a_word"
	case errors.Is(err, game.ErrIncomplete):
		return http.StatusUnprocessableEntity, "incomplete"
	case errors.Is(err, game.ErrHintIndex):
		return http.StatusUnprocessableEntity, "bad_hint_index"
	case errors.Is(err, engine.ErrNoWords):
		return http.StatusServiceUnavailable, "no_words"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "timeout"
	}
	return http.StatusInternalServerError, "internal"
}

// writeErr reports err; round (when it carries a round) is echoed unchanged
// and its status line becomes the message.
func writeErr(w http.ResponseWriter, err error, round *game.State) {
	status, code := classify(err)
	body := errorBody{Error: code, Message: err.Error()}
	if round != nil && round.ID != "" {
		body.Round = round
		if round.Message != "" {
			body.Message = round.Message
		}
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("code", code).Msg("request failed")
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
