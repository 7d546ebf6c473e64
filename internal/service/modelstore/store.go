// Package modelstore makes sure the pre-trained model artifact is on disk,
// downloading it once from a fixed URL when the cached copy is missing.
package modelstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"catdog/internal/logger"
)

var ErrNoSource = errors.New("model file missing and no download URL configured")

type Store struct {
	path   string
	url    string
	client *http.Client
	logger *logger.Logger
}

// New creates a Store caching url at path.
func New(path, url string, timeout time.Duration, logger *logger.Logger) *Store {
	return &Store{
		path:   path,
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Path returns the cache location.
func (s *Store) Path() string {
	return s.path
}

// Ensure returns the local model path, downloading the artifact first if the
// cached file is missing or empty.
func (s *Store) Ensure(ctx context.Context) (string, error) {
	if info, err := os.Stat(s.path); err == nil && info.Size() > 0 {
		s.logger.Info("📦 Using cached model %s (%d bytes)", s.path, info.Size())
		return s.path, nil
	}

	if s.url == "" {
		return "", fmt.Errorf("%w: %s", ErrNoSource, s.path)
	}

	s.logger.Info("⬇️  Downloading model from %s", s.url)
	start := time.Now()

	n, err := s.download(ctx)
	if err != nil {
		return "", err
	}

	s.logger.Info("📦 Model saved to %s (%d bytes in %s)", s.path, n, time.Since(start).Round(time.Millisecond))
	return s.path, nil
}

// download streams the artifact into a temp file next to the target and
// renames it into place, so a failed transfer never leaves a partial cache.
func (s *Store) download(ctx context.Context) (int64, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create model directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("model download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("model download failed: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write model: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("model download returned an empty body")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return 0, fmt.Errorf("failed to move model into place: %w", err)
	}
	return n, nil
}
