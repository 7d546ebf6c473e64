package service

import (
	"errors"
	"image"
	"math/rand"
	"sync"
	"time"

	"catdog/internal/dto"
	"catdog/internal/logger"
	"catdog/internal/model"
	"catdog/internal/service/classifier"
	"catdog/internal/service/session"
	"catdog/internal/service/storage"
	"catdog/internal/service/theme"
	"catdog/internal/service/websocket"
)

// ErrPrediction wraps every failure of the inference pipeline.
var ErrPrediction = errors.New("prediction failed")

// Manager runs one user interaction: classify the image, score the guess,
// record the result and notify live viewers.
type Manager struct {
	model         classifier.Model
	theme         *theme.Theme
	sessions      *session.Service
	bufferService *storage.BufferService
	hubService    *websocket.HubService
	logger        *logger.Logger

	rnd   *rand.Rand
	rndMu sync.Mutex
}

// PredictRequest is one upload.
type PredictRequest struct {
	SessionID string
	Image     image.Image
	Guess     session.Guess
}

func NewManager(model classifier.Model, activeTheme *theme.Theme, sessions *session.Service,
	bufferService *storage.BufferService, hubService *websocket.HubService, logger *logger.Logger) *Manager {
	return &Manager{
		model:         model,
		theme:         activeTheme,
		sessions:      sessions,
		bufferService: bufferService,
		hubService:    hubService,
		logger:        logger,
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Predict classifies the uploaded image and builds the page response.
func (m *Manager) Predict(req PredictRequest) (*dto.PredictionResponse, error) {
	start := time.Now()

	pred, err := classifier.ClassifyImage(req.Image, m.model)
	if err != nil {
		return nil, errors.Join(ErrPrediction, err)
	}

	guess := req.Guess
	if guess == "" {
		guess = session.GuessNotSure
	}
	outcome := session.Evaluate(guess, pred.Label)

	m.logger.Info("🐾 %s (%.2f%%, raw %.4f) guess=%s outcome=%s in %s",
		pred.Label, pred.Confidence*100, pred.RawScore, guess, outcome, time.Since(start).Round(time.Millisecond))

	resp := &dto.PredictionResponse{
		Label:             pred.Label,
		Confidence:        pred.Confidence,
		ConfidencePercent: theme.FormatPercent(pred.Confidence),
		RawScore:          pred.RawScore,
		Emoji:             m.theme.Emoji(pred.Label),
		Message:           m.theme.ResultMessage(pred.Label, pred.Confidence),
		Speech:            m.theme.Speech(pred.Label, pred.Confidence),
		Sound:             m.theme.Sound(pred.Label),
		Fact:              m.fact(pred.Label),
		Guess:             string(guess),
		Outcome:           string(outcome),
	}

	switch outcome {
	case session.OutcomeCorrect:
		resp.Celebrate = true
		resp.GuessMessage = m.theme.CorrectMessage
		resp.AnimationURL = m.theme.AnimationURL
	case session.OutcomeWrong:
		resp.GuessMessage = m.theme.WrongMessage
	}

	if req.SessionID != "" {
		m.record(req, pred, guess, outcome, resp)
	}

	if m.hubService != nil {
		m.hubService.Publish(websocket.PredictionEvent{
			Label:      pred.Label,
			Confidence: pred.Confidence,
			Emoji:      resp.Emoji,
			Outcome:    string(outcome),
			Timestamp:  time.Now().UTC(),
		})
	}

	return resp, nil
}

// record updates the scoreboard and queues the history entry. Failures here
// are logged and never hide the prediction from the user.
func (m *Manager) record(req PredictRequest, pred classifier.Prediction, guess session.Guess, outcome session.Outcome, resp *dto.PredictionResponse) {
	sess, err := m.sessions.Record(req.SessionID, pred.Label, outcome)
	if err != nil {
		m.logger.Error("Error updating scoreboard for session %s: %v", req.SessionID, err)
	} else {
		resp.Scoreboard = dto.NewScoreboard(sess)
	}

	if m.bufferService == nil {
		return
	}

	bounds := req.Image.Bounds()
	m.bufferService.Add(model.Prediction{
		SessionID:   req.SessionID,
		Label:       pred.Label,
		Confidence:  pred.Confidence,
		RawScore:    pred.RawScore,
		Guess:       string(guess),
		Outcome:     string(outcome),
		ImageWidth:  bounds.Dx(),
		ImageHeight: bounds.Dy(),
		CreatedAt:   time.Now().UTC(),
	})
}

func (m *Manager) fact(label string) string {
	m.rndMu.Lock()
	defer m.rndMu.Unlock()
	return m.theme.Fact(label, m.rnd)
}

// Scoreboard returns the scoreboard of a session.
func (m *Manager) Scoreboard(sessionID string) (*dto.Scoreboard, error) {
	sess, err := m.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return dto.NewScoreboard(sess), nil
}

// ResetScoreboard clears a session's counters.
func (m *Manager) ResetScoreboard(sessionID string) (*dto.Scoreboard, error) {
	sess, err := m.sessions.Reset(sessionID)
	if err != nil {
		return nil, err
	}
	return dto.NewScoreboard(sess), nil
}

// SetNickname renames a session on the leaderboard.
func (m *Manager) SetNickname(sessionID, nickname string) (*dto.Scoreboard, error) {
	sess, err := m.sessions.SetNickname(sessionID, nickname)
	if err != nil {
		return nil, err
	}
	return dto.NewScoreboard(sess), nil
}

// Leaderboard ranks sessions; the caller's own row is flagged.
func (m *Manager) Leaderboard(sessionID string, limit int) ([]dto.LeaderboardEntry, error) {
	sessions, err := m.sessions.Leaderboard(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(sessions))
	for i, s := range sessions {
		entries = append(entries, dto.LeaderboardEntry{
			Rank:           i + 1,
			Nickname:       s.Nickname,
			CorrectGuesses: s.CorrectGuesses,
			WrongGuesses:   s.WrongGuesses,
			BestStreak:     s.BestStreak,
			Accuracy:       dto.Accuracy(s.CorrectGuesses, s.WrongGuesses),
			You:            s.ID == sessionID,
		})
	}
	return entries, nil
}

func (m *Manager) Theme() *theme.Theme {
	return m.theme
}

func (m *Manager) GetBufferService() *storage.BufferService {
	return m.bufferService
}

func (m *Manager) GetWebsocketService() *websocket.HubService {
	return m.hubService
}
