package handler

import (
	"net/http"

	"catdog/internal/logger"
	"catdog/internal/service"
)

// ThemeHandler returns the active theme so the page can render titles, colours and emoji.
func ThemeHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, manager.Theme())
	}
}
