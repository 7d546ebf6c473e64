package websocket

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"catdog/internal/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*HubService, *httptest.Server) {
	t.Helper()

	hub := NewHubService(logger.NewWriterLogger(&bytes.Buffer{}))
	go hub.Run()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
		defer hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))

	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *HubService, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.GetClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_PublishReachesViewers(t *testing.T) {
	hub, srv := startHub(t)

	first := dial(t, srv)
	second := dial(t, srv)
	waitForClients(t, hub, 2)

	event := PredictionEvent{Label: "dog", Confidence: 0.93, Emoji: "🐶", Outcome: "correct", Timestamp: time.Now().UTC()}
	hub.Publish(event)

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)

		var got PredictionEvent
		require.NoError(t, json.Unmarshal(msg, &got))
		assert.Equal(t, "dog", got.Label)
		assert.InDelta(t, 0.93, got.Confidence, 1e-9)
		assert.Equal(t, "correct", got.Outcome)
	}
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_PublishWithoutViewers(t *testing.T) {
	hub, _ := startHub(t)

	// Must not block or panic.
	for i := 0; i < 100; i++ {
		hub.Publish(PredictionEvent{Label: "cat"})
	}
}
