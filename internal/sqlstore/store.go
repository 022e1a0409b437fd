// internal/sqlstore/store.go
//
// SQLite-backed score history.
// Responsibilities:
//   - Bowler accounts (bcrypt password hashes, games played, best score).
//   - Archive of games: owner, frame count, roll log, final total.
//   - Per-user history and a daily leaderboard.

package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/bowling/assets"
)

var (
	ErrUsernameTaken  = errors.New("username taken")
	ErrBadCredentials = errors.New("invalid username or password")
	ErrInvalidSignup  = errors.New("invalid signup")
	ErrNotFound       = errors.New("not found")
)

// Game status values stored in games.status.
const (
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens the database at path and applies the embedded migrations.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, assets.Migrations()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// ------------------------------- users -------------------------------------

// User matches the users table shape.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	GamesPlayed  int       `json:"gamesPlayed"`
	BestScore    int       `json:"bestScore"`
	TotalPoints  int       `json:"totalPoints"`
}

// Average is the mean final score over finished games.
func (u *User) Average() float64 {
	if u.GamesPlayed == 0 {
		return 0
	}
	return float64(u.TotalPoints) / float64(u.GamesPlayed)
}

// CreateUser validates input, checks uniqueness, hashes the password, and inserts a new user.
func (s *Store) CreateUser(ctx context.Context, username, pw string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := validateSignup(username, pw); err != nil {
		return nil, err
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username=?`, username).Scan(&exists)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check username: %w", err)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(h),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Authenticate returns the user when pw matches, ErrBadCredentials otherwise.
func (s *Store) Authenticate(ctx context.Context, username, pw string) (*User, error) {
	u, err := s.UserByName(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pw)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// UserByName loads a user by case-insensitive username.
func (s *Store) UserByName(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, best_score, total_points
	                                  FROM users WHERE username=?`, username)
	return scanUser(row)
}

// UserByID loads a user by ID.
func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, best_score, total_points
	                                  FROM users WHERE id=?`, id)
	return scanUser(row)
}

// scanUser converts a *sql.Row into a User.
func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.GamesPlayed, &u.BestScore, &u.TotalPoints); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// validateSignup enforces basic username/password rules.
func validateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return fmt.Errorf("%w: username must be 3-24 chars", ErrInvalidSignup)
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Errorf("%w: username: letters, numbers, underscore only", ErrInvalidSignup)
		}
	}
	if len(p) < 8 || len(p) > 72 {
		return fmt.Errorf("%w: password must be 8-72 chars", ErrInvalidSignup)
	}
	return nil
}

// ------------------------------- games -------------------------------------

// GameRow is one archived game.
type GameRow struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	AnonymousID string     `json:"-"`
	Frames      int        `json:"frames"`
	Rolls       []int      `json:"rolls"`
	Total       int        `json:"total"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"` // nil while playing
}

// InsertGame records a new game owned by either a user or an anonymous ID.
func (s *Store) InsertGame(ctx context.Context, g GameRow) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO games (id, user_id, anonymous_id, frames, status, started_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, nullable(g.UserID), nullable(g.AnonymousID), g.Frames, StatusPlaying,
		g.StartedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", g.ID, err)
	}
	return nil
}

// RestartGame restamps a game whose session was reset before finishing.
// Finished rows are archived and stay untouched.
func (s *Store) RestartGame(ctx context.Context, id string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE games SET rolls='[]', total=0, started_at=? WHERE id=? AND status=?`,
		startedAt.UTC().Format(time.RFC3339), id, StatusPlaying)
	return err
}

// FinishGame stores the final rolls and total and, for a registered owner,
// bumps their stats in the same transaction. Finishing twice is a no-op.
func (s *Store) FinishGame(ctx context.Context, id string, rolls []int, total int, finishedAt time.Time) error {
	raw, err := json.Marshal(rolls)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var userID sql.NullString
	var status string
	err = tx.QueryRowContext(ctx, `SELECT user_id, status FROM games WHERE id=?`, id).Scan(&userID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status == StatusFinished {
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE games SET rolls=?, total=?, status=?, finished_at=? WHERE id=?`,
		string(raw), total, StatusFinished, finishedAt.UTC().Format(time.RFC3339), id); err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	if userID.Valid {
		if _, err := tx.ExecContext(ctx, `
            UPDATE users SET games_played = games_played + 1,
                             total_points = total_points + ?,
                             best_score   = MAX(best_score, ?)
            WHERE id=?`, total, total, userID.String); err != nil {
			return fmt.Errorf("bump stats: %w", err)
		}
	}
	return tx.Commit()
}

// GamesByUser returns a user's most recent games, newest first.
func (s *Store) GamesByUser(ctx context.Context, userID string, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, frames, rolls, total, status, started_at, COALESCE(finished_at, '')
        FROM games WHERE user_id=?
        ORDER BY started_at DESC
        LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameRow{}
	for rows.Next() {
		var g GameRow
		var rolls, started, finished string
		if err := rows.Scan(&g.ID, &g.Frames, &rolls, &g.Total, &g.Status, &started, &finished); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(rolls), &g.Rolls); err != nil {
			return nil, fmt.Errorf("decode rolls of %s: %w", g.ID, err)
		}
		g.UserID = userID
		g.StartedAt, _ = time.Parse(time.RFC3339, started)
		if t, err := time.Parse(time.RFC3339, finished); err == nil {
			g.FinishedAt = &t
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ClaimAnonGames transfers anonymous games to a user account after auth.
// Already finished games are credited to the user's stats.
func (s *Store) ClaimAnonGames(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        UPDATE users SET
            games_played = games_played + (SELECT COUNT(1) FROM games WHERE anonymous_id=? AND status=?),
            total_points = total_points + (SELECT COALESCE(SUM(total), 0) FROM games WHERE anonymous_id=? AND status=?),
            best_score   = MAX(best_score, (SELECT COALESCE(MAX(total), 0) FROM games WHERE anonymous_id=? AND status=?))
        WHERE id=?`,
		anonID, StatusFinished, anonID, StatusFinished, anonID, StatusFinished, userID); err != nil {
		return fmt.Errorf("credit claimed games: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID); err != nil {
		return fmt.Errorf("claim games: %w", err)
	}
	return tx.Commit()
}

// LBRow is one leaderboard entry.
type LBRow struct {
	GameID     string    `json:"gameId"`
	Username   string    `json:"username"`
	Total      int       `json:"total"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Leaderboard returns the best finished games of registered bowlers on date (YYYY-MM-DD, UTC).
//
//   - Ordered by total DESC, then finish time ASC.
//   - Default limit is 20 if not specified.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT g.id, u.username, g.total, g.finished_at
        FROM games g JOIN users u ON u.id = g.user_id
        WHERE g.status=? AND substr(g.finished_at, 1, 10)=?
        ORDER BY g.total DESC, g.finished_at ASC
        LIMIT ?`, StatusFinished, date, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		var finished string
		if err := rows.Scan(&r.GameID, &r.Username, &r.Total, &finished); err != nil {
			return nil, err
		}
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
