package handler

import (
	"errors"
	"net/http"

	"catdog/internal/config"
	"catdog/internal/logger"
	"catdog/internal/middleware"
	"catdog/internal/service"
	"catdog/internal/service/classifier"
	"catdog/internal/service/session"
)

const (
	msgInvalidFormat    = "Invalid image format. Supported: JPEG, PNG"
	msgPredictionFailed = "Prediction failed"
	msgTooLarge         = "Image too large"
)

// PredictHandler handles POST /api/predict: a multipart "image" file plus an optional "guess".
func PredictHandler(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		limit := cfg.MaxUploadBytes()
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(limit); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, logger, http.StatusRequestEntityTooLarge, msgTooLarge)
				return
			}
			writeError(w, logger, http.StatusBadRequest, "Expected multipart form with an image file")
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, _, err := r.FormFile("image")
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "Image file is required")
			return
		}
		defer file.Close()

		img, _, err := classifier.Decode(file, cfg.MaxImagePixels)
		if errors.Is(err, classifier.ErrImageTooLarge) {
			logger.Warning("Rejected upload: %v", err)
			writeError(w, logger, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		if err != nil {
			logger.Warning("Rejected upload: %v", err)
			writeError(w, logger, http.StatusBadRequest, msgInvalidFormat)
			return
		}

		guess, err := session.ParseGuess(r.FormValue("guess"))
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, err.Error())
			return
		}

		resp, err := manager.Predict(service.PredictRequest{
			SessionID: middleware.SessionID(r.Context()),
			Image:     img,
			Guess:     guess,
		})
		if err != nil {
			logger.Error("❌ %v", err)
			writeError(w, logger, http.StatusInternalServerError, msgPredictionFailed)
			return
		}

		writeJSON(w, logger, http.StatusOK, resp)
	}
}
