package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catdog/internal/config"
	"catdog/internal/logger"
	"catdog/internal/repository/sqlite"
	"catdog/internal/route"
	"catdog/internal/service"
	"catdog/internal/service/ai"
	"catdog/internal/service/modelstore"
	"catdog/internal/service/session"
	"catdog/internal/service/storage"
	"catdog/internal/service/theme"
	"catdog/internal/service/websocket"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config        *config.Config
	logger        *logger.Logger
	db            *sqlite.DB
	model         ai.ModelService
	bufferService *storage.BufferService
	hubService    *websocket.HubService
	manager       *service.Manager
	handler       http.Handler
}

// NewApp loads the configuration and builds every service. The model is
// downloaded first if it is not cached yet.
func NewApp(ctx context.Context) (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	store := modelstore.New(cfg.ModelPath, cfg.ModelURL, time.Duration(cfg.ModelDownloadTimeout)*time.Second, log)
	modelPath, err := store.Ensure(ctx)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("model not available: %w", err)
	}

	model, err := ai.NewModel(cfg, modelPath, log)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	registry, err := theme.Load(cfg.ThemeFile)
	if err != nil {
		model.Close()
		log.Close()
		return nil, fmt.Errorf("failed to load themes: %w", err)
	}
	activeTheme, err := registry.Get(cfg.Theme)
	if err != nil {
		log.Warning("⚠️  %v - available: %v, using classic", err, registry.Names())
		if activeTheme, err = registry.Get("classic"); err != nil {
			model.Close()
			log.Close()
			return nil, err
		}
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		model.Close()
		log.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sessionRepo := sqlite.NewSessionRepository(db)
	predictionRepo := sqlite.NewPredictionRepository(db)

	buffer := storage.NewBufferService(cfg, log, predictionRepo)
	hub := websocket.NewHubService(log)
	sessions := session.NewService(sessionRepo, log)

	mng := service.NewManager(model, activeTheme, sessions, buffer, hub, log)

	return &App{
		config:        cfg,
		logger:        log,
		db:            db,
		model:         model,
		bufferService: buffer,
		hubService:    hub,
		manager:       mng,
		handler:       route.SetupRoutes(mng, cfg, log, predictionRepo, model.Backend()),
	}, nil
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts down cleanly.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background services
	go a.bufferService.Run()
	go a.hubService.Run()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("🐶🐱 Cat vs Dog Classifier\n")
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("🤖 Model: %s (%s)\n", a.config.ModelPath, a.model.Backend())
	fmt.Printf("🎨 Theme: %s\n", a.manager.Theme().Name)
	fmt.Printf("🗄️  Database: %s\n", a.config.DatabasePath)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		a.logger.Info("🛑 Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Error during shutdown: %v", err)
		}
	}

	a.close()
	return serveErr
}

func (a *App) close() {
	a.hubService.Stop()
	a.bufferService.Stop()
	a.model.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database: %v", err)
	}
	a.logger.Close()
}
