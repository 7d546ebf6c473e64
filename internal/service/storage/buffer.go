package storage

import (
	"sync"
	"time"

	"catdog/internal/config"
	"catdog/internal/logger"
	"catdog/internal/model"
	"catdog/internal/repository"
)

// BufferService buffers prediction records in memory and periodically flushes them to the database.
type BufferService struct {
	predictions   []model.Prediction
	bufferCount   map[string]int
	bufferLimit   int
	flushInterval time.Duration
	mu            sync.Mutex
	logger        *logger.Logger
	repo          repository.PredictionRepository
	stop          chan struct{}
	done          chan struct{}
}

// NewBufferService creates a new BufferService writing into repo.
func NewBufferService(config *config.Config, logger *logger.Logger, repo repository.PredictionRepository) *BufferService {
	interval := time.Duration(config.FlushInterval) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &BufferService{
		predictions:   make([]model.Prediction, 0),
		bufferCount:   make(map[string]int),
		bufferLimit:   config.BufferLimit,
		flushInterval: interval,
		logger:        logger,
		repo:          repo,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Run starts a ticker loop that periodically flushes predictions, until Stop is called.
func (s *BufferService) Run() {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-ticker.C:
			s.Flush()
		case <-s.stop:
			s.Flush()
			return
		}
	}
}

// Stop ends Run after a final flush.
func (s *BufferService) Stop() {
	close(s.stop)
	<-s.done
}

// Add appends a prediction to the buffer. Sessions over the per-flush limit are dropped
// until the next flush. Returns false when the record was dropped.
func (s *BufferService) Add(p model.Prediction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bufferLimit > 0 && s.bufferCount[p.SessionID] >= s.bufferLimit {
		s.logger.Warning("Buffer full for session %s (%d/%d) - prediction not recorded", p.SessionID, s.bufferCount[p.SessionID], s.bufferLimit)
		return false
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.predictions = append(s.predictions, p)
	s.bufferCount[p.SessionID]++
	return true
}

// Pending returns the number of buffered predictions.
func (s *BufferService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.predictions)
}

// Flush writes buffered predictions to the database and resets the per-session counters.
// On failure the records stay buffered for the next attempt.
func (s *BufferService) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.predictions) == 0 {
		return
	}

	if err := s.repo.InsertBatch(s.predictions); err != nil {
		s.logger.Error("Error saving predictions to database: %v", err)
		return
	}

	s.logger.Info("💾 Flushed %d predictions to database", len(s.predictions))
	s.predictions = s.predictions[:0]
	s.bufferCount = make(map[string]int)
}
