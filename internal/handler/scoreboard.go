package handler

import (
	"errors"
	"net/http"

	"catdog/internal/logger"
	"catdog/internal/middleware"
	"catdog/internal/service"
	"catdog/internal/service/session"
)

// ScoreboardHandler returns the caller's scoreboard.
func ScoreboardHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		board, err := manager.Scoreboard(middleware.SessionID(r.Context()))
		if err != nil {
			sessionError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, board)
	}
}

// ResetScoreboardHandler zeroes the caller's counters.
func ResetScoreboardHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		board, err := manager.ResetScoreboard(middleware.SessionID(r.Context()))
		if err != nil {
			sessionError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, board)
	}
}

// NicknameHandler sets the name shown on the leaderboard (form field "nickname").
func NicknameHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		board, err := manager.SetNickname(middleware.SessionID(r.Context()), r.FormValue("nickname"))
		if err != nil {
			sessionError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, board)
	}
}

// LeaderboardHandler returns the top sessions; ?limit= defaults to 10.
func LeaderboardHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		limit := atoiDefault(r.URL.Query().Get("limit"), 10)
		if limit > 100 {
			limit = 100
		}

		entries, err := manager.Leaderboard(middleware.SessionID(r.Context()), limit)
		if err != nil {
			logger.Error("Error loading leaderboard: %v", err)
			writeError(w, logger, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		writeJSON(w, logger, http.StatusOK, entries)
	}
}

func sessionError(w http.ResponseWriter, logger *logger.Logger, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidNickname), errors.Is(err, session.ErrInvalidID):
		writeError(w, logger, http.StatusBadRequest, err.Error())
	default:
		logger.Error("Session error: %v", err)
		writeError(w, logger, http.StatusInternalServerError, "Internal Server Error")
	}
}
