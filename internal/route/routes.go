package route

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"catdog/internal/config"
	"catdog/internal/handler"
	"catdog/internal/logger"
	"catdog/internal/middleware"
	"catdog/internal/repository"
	"catdog/internal/service"
)

// dynamicHTMLHandler serves /path as <static>/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/" {
			path = "/index"
		}
		if strings.Contains(path, "..") {
			http.NotFound(w, r)
			return
		}

		filePath := filepath.Join(staticDir, filepath.FromSlash(path)+".html")

		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// SetupRoutes registers HTTP routes, static file serving, API endpoints,
// and wraps the mux with the session and authentication middleware.
func SetupRoutes(manager *service.Manager, cfg *config.Config, log *logger.Logger,
	predictionRepo repository.PredictionRepository, backend string) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDirectory))))

	mux.HandleFunc("/health", handler.HealthHandler(manager, backend, log))

	// API endpoints
	mux.HandleFunc("/api/theme", handler.ThemeHandler(manager, log))
	mux.HandleFunc("/api/predict", handler.PredictHandler(manager, cfg, log))
	mux.HandleFunc("/api/scoreboard", handler.ScoreboardHandler(manager, log))
	mux.HandleFunc("/api/scoreboard/reset", handler.ResetScoreboardHandler(manager, log))
	mux.HandleFunc("/api/session/nickname", handler.NicknameHandler(manager, log))
	mux.HandleFunc("/api/leaderboard", handler.LeaderboardHandler(manager, log))
	mux.HandleFunc("/api/live", handler.LiveFeedHandler(manager, log))

	// Admin endpoints
	mux.HandleFunc("/admin/history", handler.HistoryHandler(manager, log, predictionRepo))
	mux.HandleFunc("/admin/stats", handler.StatsHandler(log, predictionRepo))
	mux.HandleFunc("/admin/history/clear", handler.ClearHistoryHandler(manager, log, predictionRepo))

	// Log endpoints
	for level, file := range map[string]string{
		"info":    logger.InfoFile,
		"warning": logger.WarningFile,
		"error":   logger.ErrorFile,
	} {
		mux.HandleFunc("/admin/logs/"+level, handler.ShowLogsHandler(log, file))
		mux.HandleFunc("/admin/logs/"+level+"/clear", handler.ClearLogsHandler(log, file))
	}

	// Auth endpoints
	mux.HandleFunc("/auth/login", handler.LoginHandler(cfg, log))
	mux.HandleFunc("/auth/logout", handler.LogoutHandler)

	// Automatic HTML handler mapping for example: /admin -> /static/admin.html
	mux.HandleFunc("/", dynamicHTMLHandler(cfg.StaticDirectory))

	// Apply middleware
	return middleware.SessionMiddleware(middleware.AuthMiddleware(mux))
}
