// internal/httpserver/routes_game.go
//
// HTTP routes for playing a game.
//   - POST /games              → start a session (optional {"frames": n})
//   - GET  /games/{id}         → scoreboard and cursor
//   - POST /games/{id}/rolls   → record {"pins": n}
//   - POST /games/{id}/reset   → start an unfinished session over (409 once finished)
//   - GET  /leaderboard        → best finished games for a date (default today)
//
// Only the session owner (user or anonymous cookie) may roll or reset.

package httpserver

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bowling/internal/bowling"
	"github.com/robalobadob/bowling/internal/game"
	"github.com/robalobadob/bowling/internal/scoreboard"
	"github.com/robalobadob/bowling/internal/sqlstore"
	"github.com/robalobadob/bowling/internal/store"
)

// mountGames registers the /games routes on r.
func (s *Server) mountGames(r chi.Router) {
	r.Post("/games", s.handleNewGame)
	r.Get("/games/{id}", s.handleGetGame)
	r.Post("/games/{id}/rolls", s.handleRoll)
	r.Post("/games/{id}/reset", s.handleReset)
}

// gameView is the JSON shape of a session.
type gameView struct {
	GameID string           `json:"gameId"`
	State  game.State       `json:"state"`
	Frame  int              `json:"frame"` // cursor frame, 0-based
	Roll   string           `json:"roll"`  // cursor slot: first | second | third
	Rolls  []int            `json:"rolls"`
	Board  scoreboard.Board `json:"board"`
}

func viewOf(snap game.Snapshot) gameView {
	return gameView{
		GameID: snap.ID,
		State:  snap.State,
		Frame:  snap.Cursor.Frame,
		Roll:   snap.Cursor.Slot.String(),
		Rolls:  snap.Rolls,
		Board:  scoreboard.Render(snap.Frames, snap.Total, snap.State == game.StateFinished),
	}
}

// newGameReq is the payload for POST /games.
type newGameReq struct {
	Frames int `json:"frames"` // 0 → configured default
}

// handleNewGame creates a session and records it in the history.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	frames := req.Frames
	if frames == 0 {
		frames = s.cfg.Rules.Frames
	}
	if frames < 1 || frames > s.cfg.Rules.MaxFrames {
		writeError(w, http.StatusBadRequest, "invalid_frames")
		return
	}

	userID, anonID := s.owner(w, r)
	ownerID := userID
	if ownerID == "" {
		ownerID = anonID
	} else {
		anonID = "" // registered games are never claimed again
	}

	g := game.New(ownerID, frames)
	if err := s.sessions.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	if err := s.history.InsertGame(r.Context(), sqlstore.GameRow{
		ID: g.ID, UserID: userID, AnonymousID: anonID, Frames: frames, StartedAt: g.StartedAt,
	}); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}
	log.Info().Str("gameId", g.ID).Int("frames", frames).Msg("game started")

	writeJSON(w, http.StatusCreated, viewOf(g.Snapshot()))
}

// handleGetGame returns the scoreboard of any session.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(g.Snapshot()))
}

// rollReq is the payload for POST /games/{id}/rolls.
type rollReq struct {
	Pins *int `json:"pins"`
}

// handleRoll applies a roll and archives the game once it is finished.
func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	var req rollReq
	if err := decodeJSON(r, &req); err != nil || req.Pins == nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	g, ok := s.lookupOwned(w, r)
	if !ok {
		return
	}

	snap, err := g.ApplyRoll(*req.Pins)
	switch {
	case errors.Is(err, bowling.ErrGameFinished):
		writeError(w, http.StatusConflict, "game_finished")
		return
	case errors.Is(err, bowling.ErrInvalidPins):
		writeError(w, http.StatusBadRequest, "invalid_pins")
		return
	case err != nil:
		log.Error().Err(err).Str("gameId", g.ID).Msg("apply roll")
		writeError(w, http.StatusInternalServerError, "roll_failed")
		return
	}

	if snap.State == game.StateFinished {
		if err := s.history.FinishGame(r.Context(), g.ID, snap.Rolls, snap.Total, snap.FinishedAt); err != nil {
			log.Warn().Err(err).Str("gameId", g.ID).Msg("finish game row")
		}
		log.Info().Str("gameId", g.ID).Int("total", snap.Total).Msg("game finished")
	}
	writeJSON(w, http.StatusOK, viewOf(snap))
}

// handleReset clears an unfinished session back to frame 1.
// Finished games are archived; the client starts a new game instead.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookupOwned(w, r)
	if !ok {
		return
	}
	snap, err := g.Reset()
	if errors.Is(err, bowling.ErrGameFinished) {
		writeError(w, http.StatusConflict, "game_finished")
		return
	}
	if err := s.history.RestartGame(r.Context(), g.ID, snap.StartedAt); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("restart game row")
	}
	writeJSON(w, http.StatusOK, viewOf(snap))
}

// lookup loads the session named in the URL or writes a 404.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*game.Game, bool) {
	g, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Msg("get game")
		writeError(w, http.StatusInternalServerError, "load_failed")
		return nil, false
	}
	return g, true
}

// lookupOwned is lookup plus an ownership check for mutating routes.
func (s *Server) lookupOwned(w http.ResponseWriter, r *http.Request) (*game.Game, bool) {
	g, ok := s.lookup(w, r)
	if !ok {
		return nil, false
	}
	userID, anonID := s.owner(w, r)
	if g.OwnerID != userID && g.OwnerID != anonID {
		writeError(w, http.StatusForbidden, "not_owner")
		return nil, false
	}
	return g, true
}

// lbRes is returned by /leaderboard.
type lbRes struct {
	Date string           `json:"date"`
	Top  []sqlstore.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = sqlstore.DateKey(time.Now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	rows, err := s.history.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
