package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"catdog/internal/model"
	"catdog/internal/repository"
)

const sessionColumns = `id, nickname, predictions, cats, dogs, correct_guesses, wrong_guesses,
	streak, best_streak, created_at, updated_at`

// SessionRepository implements repository.SessionRepository for SQLite.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session; an existing row with the same ID is left untouched.
func (r *SessionRepository) Create(s *model.Session) error {
	r.db.Lock()
	defer r.db.Unlock()

	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}

	_, err := r.db.Conn().Exec(`
		INSERT OR IGNORE INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Nickname, s.Predictions, s.Cats, s.Dogs, s.CorrectGuesses, s.WrongGuesses,
		s.Streak, s.BestStreak, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by its ID. Returns nil when not found.
func (r *SessionRepository) GetByID(id string) (*model.Session, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	s, err := scanSession(r.db.Conn().QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// Top returns sessions ranked by correct guesses, then best streak.
// Sessions that never guessed are left out.
func (r *SessionRepository) Top(limit int) ([]model.Session, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT `+sessionColumns+` FROM sessions
		WHERE correct_guesses + wrong_guesses > 0
		ORDER BY correct_guesses DESC, best_streak DESC, wrong_guesses ASC, created_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// Update writes all counters of a session.
func (r *SessionRepository) Update(s *model.Session) error {
	r.db.Lock()
	defer r.db.Unlock()

	s.UpdatedAt = time.Now().UTC()
	result, err := r.db.Conn().Exec(`
		UPDATE sessions SET nickname = ?, predictions = ?, cats = ?, dogs = ?,
			correct_guesses = ?, wrong_guesses = ?, streak = ?, best_streak = ?, updated_at = ?
		WHERE id = ?
	`, s.Nickname, s.Predictions, s.Cats, s.Dogs, s.CorrectGuesses, s.WrongGuesses,
		s.Streak, s.BestStreak, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return requireRow(result, "session", s.ID)
}

// SetNickname changes the display name shown on the leaderboard.
func (r *SessionRepository) SetNickname(id, nickname string) error {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`UPDATE sessions SET nickname = ?, updated_at = ? WHERE id = ?`,
		nickname, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set nickname: %w", err)
	}
	return requireRow(result, "session", id)
}

// Reset zeroes every counter of a session, keeping its nickname.
func (r *SessionRepository) Reset(id string) error {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		UPDATE sessions SET predictions = 0, cats = 0, dogs = 0, correct_guesses = 0,
			wrong_guesses = 0, streak = 0, best_streak = 0, updated_at = ?
		WHERE id = ?
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	return requireRow(result, "session", id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.Nickname, &s.Predictions, &s.Cats, &s.Dogs, &s.CorrectGuesses,
		&s.WrongGuesses, &s.Streak, &s.BestStreak, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func requireRow(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
	}
	return nil
}
