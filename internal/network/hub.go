// Package network is the websocket edge of the scene server. The rendering
// frontend connects here: presentation snapshots and scene events flow out,
// player input and animation callbacks flow in.
package network

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Fred-qub/deliriumGame/internal/engine"
	"github.com/Fred-qub/deliriumGame/internal/events"
	"github.com/Fred-qub/deliriumGame/internal/platform/logger"
	"github.com/Fred-qub/deliriumGame/internal/platform/metrics"
)

// Envelope wraps every outbound message with its channel so the frontend
// can route without sniffing payload shapes.
type Envelope struct {
	Channel string      `json:"channel"` // "presentation", "event", "animation"
	Data    interface{} `json:"data"`
}

// ActionHandler routes parsed player actions into the scene.
type ActionHandler interface {
	HandleAction(action PlayerAction)
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
	metrics    *metrics.Collector
	handler    ActionHandler
	sendBuf    int
}

// NewHub initializes a new WebSocket Hub. sendBuf sizes each client's
// outbound queue; zero falls back to a sane default.
func NewHub(log *logger.Logger, handler ActionHandler, sendBuf int) *Hub {
	if sendBuf <= 0 {
		sendBuf = 64
	}
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
		metrics:    metrics.Get(),
		handler:    handler,
		sendBuf:    sendBuf,
	}
}

// SetActionHandler replaces the inbound action router. Only for wiring at
// startup, before clients connect.
func (h *Hub) SetActionHandler(handler ActionHandler) {
	h.handler = handler
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.WSConnect()
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.metrics.WSDisconnect()
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
					h.metrics.WSDisconnect()
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) broadcastJSON(channel string, data interface{}) {
	payload, err := json.Marshal(Envelope{Channel: channel, Data: data})
	if err != nil {
		h.logger.Error("Failed to serialize %s broadcast: %v", channel, err)
		h.metrics.RecordWSError()
		return
	}
	h.metrics.RecordWSMessage(false)
	h.broadcast <- payload
}

// PublishPresentation pushes a presentation snapshot to every client.
// The engine calls this on every mutation; the frontend renders the latest.
func (h *Hub) PublishPresentation(snap engine.Snapshot) {
	h.broadcastJSON("presentation", snap)
}

// BroadcastEvent pushes a scene event to every client.
func (h *Hub) BroadcastEvent(event events.SceneEvent) {
	h.broadcastJSON("event", event)
}

// TriggerAnimation tells the frontend to play a named animation. The
// sequencer's trigger steps end up here.
func (h *Hub) TriggerAnimation(cue string) {
	h.broadcastJSON("animation", map[string]string{"cue": cue})
}

// StartEventPoller spawns a goroutine that polls the EventLog and pushes new
// events to the Hub. This keeps the Hub independent from the engine's
// goroutines while picking up the same events.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		lastProcessed := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				all := eventLog.Replay()
				if len(all) > lastProcessed {
					for _, event := range all[lastProcessed:] {
						h.BroadcastEvent(event)
					}
					lastProcessed = len(all)
				}
			}
		}
	}()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The frontend is served from its own origin during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a websocket and starts the client pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed: %v", err)
		h.metrics.RecordWSError()
		return
	}

	client := NewClient(h, conn)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
