package repository

import (
	"errors"

	"catdog/internal/model"
)

// ErrNotFound is returned by updates that match no row.
var ErrNotFound = errors.New("not found")

// SessionRepository defines the interface for session scoreboard operations.
type SessionRepository interface {
	// Create operations
	Create(s *model.Session) error

	// Read operations
	GetByID(id string) (*model.Session, error)
	Top(limit int) ([]model.Session, error)

	// Update operations
	Update(s *model.Session) error
	SetNickname(id, nickname string) error
	Reset(id string) error
}

// PredictionRepository defines the interface for prediction history operations.
type PredictionRepository interface {
	// Create operations
	InsertBatch(predictions []model.Prediction) error

	// Read operations
	GetAll(filter *model.PredictionFilter) ([]model.Prediction, error)
	GetTotalCount(filter *model.PredictionFilter) (int, error)
	GetStats() (*model.PredictionStats, error)

	// Delete operations
	DeleteAll() error
}
