// internal/httpserver/server.go
//
// HTTP server wiring for the bowling backend.
// Responsibilities:
//   - Router + middleware (request IDs, access log, panic recovery, timeouts, JSON, CORS).
//   - Public endpoints: "/", "/health", "/leaderboard".
//   - Game endpoints (optional auth): /games, /games/{id}, rolls and reset.
//   - Auth + history endpoints (require auth): /auth/*, /games/mine.
//
// Notes:
//   - Live sessions sit in the session store; the history database only sees
//     game creation, reset, and completion.
//   - History writes are best effort: a failing database never blocks play.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bowling/internal/config"
	"github.com/robalobadob/bowling/internal/sqlstore"
	"github.com/robalobadob/bowling/internal/store"
)

// Sessions is the live game store the server needs.
type Sessions interface {
	store.Store
	Prune(cutoff time.Time) int
}

// History is the subset of the score archive used by handlers.
type History interface {
	Ping(ctx context.Context) error
	CreateUser(ctx context.Context, username, pw string) (*sqlstore.User, error)
	Authenticate(ctx context.Context, username, pw string) (*sqlstore.User, error)
	UserByID(ctx context.Context, id string) (*sqlstore.User, error)
	InsertGame(ctx context.Context, g sqlstore.GameRow) error
	RestartGame(ctx context.Context, id string, startedAt time.Time) error
	FinishGame(ctx context.Context, id string, rolls []int, total int, finishedAt time.Time) error
	GamesByUser(ctx context.Context, userID string, limit int) ([]sqlstore.GameRow, error)
	ClaimAnonGames(ctx context.Context, anonID, userID string) error
	Leaderboard(ctx context.Context, date string, limit int) ([]sqlstore.LBRow, error)
}

// Server bundles router, session store, history, and settings.
type Server struct {
	r        *chi.Mux
	sessions Sessions
	history  History
	cfg      config.Config
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, sessions Sessions, history History) *Server {
	s := &Server{r: chi.NewRouter(), sessions: sessions, history: history, cfg: cfg}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog(log.Logger))           // zerolog request log
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsHandler(cfg.ClientOrigins))  // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"service":   "bowling-go",
			"endpoints": []string{"/health", "POST /games", "GET /games/{id}", "POST /games/{id}/rolls", "POST /games/{id}/reset", "/leaderboard", "/auth/*"},
		})
	})
	s.r.Get("/health", s.handleHealth)

	// Game endpoints: optional auth, guests can play
	s.mountGames(s.r.With(s.withOptionalAuth()))

	// Leaderboard is public.
	s.r.Get("/leaderboard", s.handleLeaderboard)

	// Auth + history (require auth)
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start serves HTTP on the configured address until ctx is cancelled.
// Idle sessions are pruned every minute while the server runs.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.pruneLoop(ctx, time.Minute)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// PruneSessions drops sessions idle for longer than the session TTL.
func (s *Server) PruneSessions(now time.Time) int {
	n := s.sessions.Prune(now.Add(-s.cfg.SessionTTL))
	if n > 0 {
		log.Info().Int("sessions", n).Msg("pruned idle sessions")
	}
	return n
}

func (s *Server) pruneLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.PruneSessions(now)
		}
	}
}

// handleHealth reports whether the history database answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Ping(r.Context()); err != nil {
		log.Error().Err(err).Msg("health: db ping")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ------------------------------- small util --------------------------------

// decodeJSON reads a small JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16)).Decode(v)
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": code}.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
