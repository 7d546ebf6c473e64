package handler

import (
	"net/http"

	"catdog/internal/dto"
	"catdog/internal/logger"
	"catdog/internal/model"
	"catdog/internal/repository"
	"catdog/internal/service"
)

const (
	maxHistoryPageSize = 100
	// Keeps (page-1)*limit far from int overflow.
	maxHistoryPage = 1_000_000
)

// HistoryHandler returns a filtered, paginated list of stored predictions.
func HistoryHandler(manager *service.Manager, logger *logger.Logger, predictionRepo repository.PredictionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}

		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 24)
		if limit > maxHistoryPageSize {
			limit = maxHistoryPageSize
		}
		if page > maxHistoryPage {
			writeError(w, logger, http.StatusBadRequest, "page out of range")
			return
		}

		filter := &model.PredictionFilter{
			SessionID: q.Get("session"),
			Label:     q.Get("label"),
			Outcome:   q.Get("outcome"),
			Limit:     limit,
			Offset:    (page - 1) * limit,
		}

		predictions, err := predictionRepo.GetAll(filter)
		if err != nil {
			logger.Error("Error querying predictions from database: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		totalCount, err := predictionRepo.GetTotalCount(filter)
		if err != nil {
			logger.Error("Error counting predictions: %v", err)
			totalCount = len(predictions)
		}

		pending := 0
		if buffer := manager.GetBufferService(); buffer != nil {
			pending = buffer.Pending()
		}

		if predictions == nil {
			predictions = []model.Prediction{}
		}

		writeJSON(w, logger, http.StatusOK, dto.HistoryData{
			Predictions: predictions,
			Pending:     pending,
			Length:      totalCount,
			TotalPages:  (totalCount + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
		})
	}
}

// StatsHandler returns aggregate statistics over the stored history.
func StatsHandler(logger *logger.Logger, predictionRepo repository.PredictionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := predictionRepo.GetStats()
		if err != nil {
			logger.Error("Error computing prediction stats: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, logger, http.StatusOK, stats)
	}
}

// ClearHistoryHandler flushes pending records and deletes the whole history.
func ClearHistoryHandler(manager *service.Manager, logger *logger.Logger, predictionRepo repository.PredictionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		if buffer := manager.GetBufferService(); buffer != nil {
			buffer.Flush()
		}
		if err := predictionRepo.DeleteAll(); err != nil {
			logger.Error("Error clearing prediction history: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		logger.Info("🧹 Prediction history cleared")
		w.WriteHeader(http.StatusNoContent)
	}
}
