package handler

import (
	"net/http"

	"catdog/internal/logger"
	"catdog/internal/service"
)

func HealthHandler(manager *service.Manager, backend string, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewers := 0
		if hub := manager.GetWebsocketService(); hub != nil {
			viewers = hub.GetClientCount()
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{
			"status":  "healthy",
			"backend": backend,
			"viewers": viewers,
		})
	}
}
