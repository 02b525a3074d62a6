// Package api - WebSocket feed for the live session surface
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/auth"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/domain"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/engine"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/wallet"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans engine output out to a stream's WebSocket clients
type Hub struct {
	mu      sync.Mutex
	clients map[*WSClient]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*WSClient]struct{})}
}

// Hooks returns engine hooks that broadcast to this hub's clients
func (hub *Hub) Hooks() engine.Hooks {
	return engine.Hooks{
		Play: func(token domain.PlayToken) {
			hub.Broadcast("play", token)
		},
		LogEntry: func(entry domain.LogEntry) {
			hub.Broadcast("log", entry)
		},
		ComboReset: func() {
			hub.Broadcast("combo_reset", nil)
		},
		Battle: func(state domain.BattleState) {
			hub.Broadcast("battle", state)
		},
	}
}

// Broadcast sends a message to every connected client
func (hub *Hub) Broadcast(msgType string, payload interface{}) {
	payloadBytes, _ := json.Marshal(payload)
	msgBytes, _ := json.Marshal(WSMessage{Type: msgType, Payload: payloadBytes})

	hub.mu.Lock()
	defer hub.mu.Unlock()
	for client := range hub.clients {
		client.enqueue(msgBytes)
	}
}

func (hub *Hub) add(c *WSClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.clients[c] = struct{}{}
}

func (hub *Hub) remove(c *WSClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	delete(hub.clients, c)
}

// CloseAll disconnects every client, for stream shutdown
func (hub *Hub) CloseAll() {
	hub.mu.Lock()
	clients := make([]*WSClient, 0, len(hub.clients))
	for c := range hub.clients {
		clients = append(clients, c)
	}
	hub.clients = make(map[*WSClient]struct{})
	hub.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

// WSClient represents a WebSocket client connection
type WSClient struct {
	conn     *websocket.Conn
	send     chan []byte
	streamID string
	identity *auth.Identity
}

func (c *WSClient) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		// Channel full, drop message
	}
}

// HandleWebSocket handles WebSocket connections for the stream feed
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	streamID := mux.Vars(r)["id"]

	eng, err := h.sessions.Get(streamID)
	if err != nil {
		respondError(w, http.StatusNotFound, "STREAM_NOT_FOUND", "Stream not found")
		return
	}

	h.mu.Lock()
	hub := h.hubs[streamID]
	h.mu.Unlock()
	if hub == nil {
		respondError(w, http.StatusNotFound, "STREAM_NOT_FOUND", "Stream not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &WSClient{
		conn:     conn,
		send:     make(chan []byte, 256),
		streamID: streamID,
		identity: identity,
	}
	hub.add(client)

	go client.writePump()
	go h.readPump(client, hub, eng)
}

// writePump pumps messages from the send channel to the connection
func (c *WSClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			w.Close()

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump pumps messages from the connection to the engine
func (h *Handler) readPump(c *WSClient, hub *Hub, eng *engine.Engine) {
	defer func() {
		hub.remove(c)
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	h.sendMessage(c, "connected", map[string]interface{}{
		"stream_id": c.streamID,
		"battle":    eng.BattleState(),
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Debug("websocket read error")
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.sendError(c, "INVALID_MESSAGE", "Invalid message format")
			continue
		}

		h.handleWSMessage(c, eng, &msg)
	}
}

// handleWSMessage processes incoming WebSocket messages
func (h *Handler) handleWSMessage(c *WSClient, eng *engine.Engine, msg *WSMessage) {
	switch msg.Type {
	case "send_gift":
		h.handleGiftMessage(c, eng, msg)

	case "chat":
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Text == "" {
			h.sendError(c, "INVALID_PAYLOAD", "Message text required")
			return
		}
		if _, err := eng.PostChat(c.identity.ID, c.identity.Name, payload.Text, time.Now()); err != nil {
			h.sendError(c, "STREAM_CLOSED", "Stream has ended")
		}

	case "animation_done":
		var payload struct {
			Failed bool   `json:"failed"`
			Reason string `json:"reason"`
		}
		json.Unmarshal(msg.Payload, &payload)
		eng.OnAnimationCompleted(payload.Failed, payload.Reason)

	case "balance":
		balance, err := eng.Balance(c.identity.ID, c.identity.Name)
		if err != nil {
			h.sendError(c, "STREAM_CLOSED", "Stream has ended")
			return
		}
		h.sendMessage(c, "balance", map[string]interface{}{
			"balance": balance,
		})

	case "ping":
		h.sendMessage(c, "pong", map[string]interface{}{
			"timestamp": time.Now().Unix(),
		})

	default:
		h.sendError(c, "UNKNOWN_MESSAGE", "Unknown message type: "+msg.Type)
	}
}

// handleGiftMessage processes gift sends arriving over the socket
func (h *Handler) handleGiftMessage(c *WSClient, eng *engine.Engine, msg *WSMessage) {
	var payload struct {
		GiftID string `json:"gift_id"`
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.sendError(c, "INVALID_PAYLOAD", "Invalid gift payload")
		return
	}

	result, err := eng.SendGift(c.identity.ID, c.identity.Name, payload.GiftID, time.Now())
	if err != nil {
		switch err {
		case engine.ErrUnknownGift:
			h.sendError(c, "UNKNOWN_GIFT", "Unknown gift id")
		case wallet.ErrInsufficientFunds:
			h.sendError(c, "INSUFFICIENT_FUNDS", "Not enough coins")
		case engine.ErrClosed:
			h.sendError(c, "STREAM_CLOSED", "Stream has ended")
		default:
			h.sendError(c, "SEND_FAILED", err.Error())
		}
		return
	}

	h.sendMessage(c, "gift_sent", result)
}

// sendMessage sends a message to the client
func (h *Handler) sendMessage(c *WSClient, msgType string, payload interface{}) {
	payloadBytes, _ := json.Marshal(payload)
	msgBytes, _ := json.Marshal(WSMessage{Type: msgType, Payload: payloadBytes})
	c.enqueue(msgBytes)
}

// sendError sends an error message to the client
func (h *Handler) sendError(c *WSClient, code, message string) {
	h.sendMessage(c, "error", map[string]string{
		"code":    code,
		"message": message,
	})
}
