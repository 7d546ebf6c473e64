package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"catdog/internal/logger"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// PredictionEvent is pushed to every live viewer after a classification.
type PredictionEvent struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Emoji      string    `json:"emoji"`
	Outcome    string    `json:"outcome"`
	Timestamp  time.Time `json:"timestamp"`
}

// HubService fans prediction events out to connected viewers.
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	stop       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		stop:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves register/unregister/broadcast requests until Stop is called.
func (h *HubService) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer connected. Total: %d", count)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer disconnected. Total: %d", count)

		case message := <-h.broadcast:
			h.send(message)

		case <-h.stop:
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// send writes message to every client, dropping the ones that fail.
func (h *HubService) send(message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Error("Error sending message: %v", err)
			delete(h.clients, client)
			client.Close()
		}
	}
}

func (h *HubService) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.stop:
		client.Close()
	}
}

func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// Stop disconnects every viewer and ends Run.
func (h *HubService) Stop() {
	close(h.stop)
}

// Publish encodes the event and queues it for broadcast. If the queue is full
// the event is dropped, so a slow viewer never blocks a prediction.
func (h *HubService) Publish(event PredictionEvent) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Error encoding live event: %v", err)
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warning("⚠️  Live feed queue full - event dropped")
	}
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
