// Package session keeps the guessing game state of each visitor.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"catdog/internal/logger"
	"catdog/internal/model"
	"catdog/internal/repository"

	"github.com/google/uuid"
)

// Guess is what the visitor thinks the image shows.
type Guess string

const (
	GuessNotSure Guess = "not_sure"
	GuessCat     Guess = "cat"
	GuessDog     Guess = "dog"
)

// Outcome is the result of comparing a guess with the prediction.
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomeCorrect Outcome = "correct"
	OutcomeWrong   Outcome = "wrong"
)

const MaxNicknameLength = 32

var (
	ErrInvalidGuess    = errors.New("guess must be one of: not sure, cat, dog")
	ErrInvalidNickname = errors.New("nickname must be 1-32 characters")
	ErrInvalidID       = errors.New("invalid session id")
)

// ParseGuess accepts "cat", "Dog", "Not Sure", "not_sure" and "" (not sure).
func ParseGuess(s string) (Guess, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	switch normalized {
	case "", "not_sure", "notsure":
		return GuessNotSure, nil
	case "cat":
		return GuessCat, nil
	case "dog":
		return GuessDog, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGuess, s)
}

// Evaluate compares the guess with the predicted label.
func Evaluate(guess Guess, label string) Outcome {
	if guess == GuessNotSure || guess == "" {
		return OutcomeSkipped
	}
	if string(guess) == strings.ToLower(label) {
		return OutcomeCorrect
	}
	return OutcomeWrong
}

// Apply updates the counters of s for one prediction.
func Apply(s *model.Session, label string, outcome Outcome) {
	s.Predictions++
	switch label {
	case "cat":
		s.Cats++
	case "dog":
		s.Dogs++
	}

	switch outcome {
	case OutcomeCorrect:
		s.CorrectGuesses++
		s.Streak++
		if s.Streak > s.BestStreak {
			s.BestStreak = s.Streak
		}
	case OutcomeWrong:
		s.WrongGuesses++
		s.Streak = 0
	}
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an identifier issued by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Service stores scoreboards in the session repository.
type Service struct {
	repo   repository.SessionRepository
	logger *logger.Logger
	mu     sync.Mutex
}

func NewService(repo repository.SessionRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get returns the session, creating it with a default nickname on first use.
func (s *Service) Get(id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreate(id)
}

func (s *Service) getOrCreate(id string) (*model.Session, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created := &model.Session{ID: id, Nickname: defaultNickname(id)}
	if err := s.repo.Create(created); err != nil {
		return nil, err
	}
	s.logger.Info("👤 New session %s", id)
	return created, nil
}

// Record applies one prediction to the session scoreboard and returns the new state.
func (s *Service) Record(id, label string, outcome Outcome) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getOrCreate(id)
	if err != nil {
		return nil, err
	}

	Apply(sess, label, outcome)
	if err := s.repo.Update(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Reset clears the scoreboard of a session.
func (s *Service) Reset(id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getOrCreate(id); err != nil {
		return nil, err
	}
	if err := s.repo.Reset(id); err != nil {
		return nil, err
	}
	s.logger.Info("🔄 Scoreboard reset for session %s", id)
	return s.repo.GetByID(id)
}

// SetNickname validates and stores the leaderboard name.
func (s *Service) SetNickname(id, nickname string) (*model.Session, error) {
	nickname = strings.TrimSpace(nickname)
	if n := utf8.RuneCountInString(nickname); n == 0 || n > MaxNicknameLength {
		return nil, ErrInvalidNickname
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getOrCreate(id); err != nil {
		return nil, err
	}
	if err := s.repo.SetNickname(id, nickname); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

// Leaderboard returns the best sessions, at most limit of them.
func (s *Service) Leaderboard(limit int) ([]model.Session, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.Top(limit)
}

func defaultNickname(id string) string {
	return "Player-" + id[:4]
}
