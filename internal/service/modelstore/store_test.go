package modelstore

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"catdog/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, url string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models", "classifier.onnx")
	return New(path, url, 5*time.Second, logger.NewWriterLogger(&bytes.Buffer{}))
}

func TestEnsure_DownloadsOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("fake onnx bytes"))
	}))
	defer srv.Close()

	store := newStore(t, srv.URL)

	path, err := store.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.Path(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake onnx bytes", string(data))

	_, err = store.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second call should hit the cache")
}

func TestEnsure_UsesExistingFile(t *testing.T) {
	store := newStore(t, "")
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0755))
	require.NoError(t, os.WriteFile(store.Path(), []byte("cached"), 0644))

	path, err := store.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.Path(), path)
}

func TestEnsure_NoURL(t *testing.T) {
	store := newStore(t, "")

	_, err := store.Ensure(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestEnsure_BadStatusLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	store := newStore(t, srv.URL)

	_, err := store.Ensure(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")

	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestEnsure_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := newStore(t, srv.URL)

	_, err := store.Ensure(context.Background())
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file should be cleaned up")
}
