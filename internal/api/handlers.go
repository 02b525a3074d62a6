// Package api provides the HTTP and WebSocket surface for the live gift
// and battle engine.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/auth"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/battle"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/engine"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/session"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/wallet"
)

// Handler contains all HTTP handlers
type Handler struct {
	auth     *auth.Service
	sessions *session.Manager

	mu   sync.Mutex
	hubs map[string]*Hub
}

// New creates a new API handler
func New(authSvc *auth.Service, sessions *session.Manager) *Handler {
	return &Handler{
		auth:     authSvc,
		sessions: sessions,
		hubs:     make(map[string]*Hub),
	}
}

// Response helpers

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

func identityFrom(r *http.Request) *auth.Identity {
	identity, _ := r.Context().Value(identityKey).(*auth.Identity)
	return identity
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request) (*engine.Engine, bool) {
	id := mux.Vars(r)["id"]
	eng, err := h.sessions.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "STREAM_NOT_FOUND", "Stream not found")
		return nil, false
	}
	return eng, true
}

// === Health & Info ===

// ServerInfo handles GET /
func (h *Handler) ServerInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":        "live-engine",
		"version":     "1.0.0",
		"description": "Live gift and battle engine",
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"sessions": h.sessions.Count(),
	})
}

// === Authentication ===

// Join handles POST /api/v1/auth/join
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	identity, token, err := h.auth.JoinViewer(req.DisplayName)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_DISPLAY_NAME", "Display name must be 1-64 characters")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"identity": identity,
		"token":    token,
	})
}

// Broadcast handles POST /api/v1/auth/broadcast
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StreamKey   string `json:"stream_key"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	identity, token, err := h.auth.AuthenticateBroadcaster(req.StreamKey, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidStreamKey):
			respondError(w, http.StatusUnauthorized, "INVALID_STREAM_KEY", "Invalid stream key")
		default:
			respondError(w, http.StatusBadRequest, "INVALID_DISPLAY_NAME", "Display name must be 1-64 characters")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"identity": identity,
		"token":    token,
	})
}

// === Streams ===

// CreateStream handles POST /api/v1/streams
func (h *Handler) CreateStream(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	if identity.Role != auth.RoleBroadcaster {
		respondError(w, http.StatusForbidden, "BROADCASTER_ONLY", "Only broadcasters can create streams")
		return
	}

	hub := NewHub()
	eng := h.sessions.Create(identity.Name, hub.Hooks())

	h.mu.Lock()
	h.hubs[eng.ID()] = hub
	h.mu.Unlock()

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"stream_id":   eng.ID(),
		"broadcaster": eng.Broadcaster(),
	})
}

// ListStreams handles GET /api/v1/streams
func (h *Handler) ListStreams(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"streams": h.sessions.List(),
	})
}

// GetStream handles GET /api/v1/streams/{id}
func (h *Handler) GetStream(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.stream(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stream_id":   eng.ID(),
		"broadcaster": eng.Broadcaster(),
		"started_at":  eng.StartedAt(),
		"battle":      eng.BattleState(),
		"combo":       eng.ComboState(),
	})
}

// CloseStream handles DELETE /api/v1/streams/{id}
func (h *Handler) CloseStream(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	if identity.Role != auth.RoleBroadcaster {
		respondError(w, http.StatusForbidden, "BROADCASTER_ONLY", "Only broadcasters can close streams")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.sessions.Close(id); err != nil {
		respondError(w, http.StatusNotFound, "STREAM_NOT_FOUND", "Stream not found")
		return
	}

	h.mu.Lock()
	hub := h.hubs[id]
	delete(h.hubs, id)
	h.mu.Unlock()
	if hub != nil {
		hub.CloseAll()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"closed": true})
}

// === Gifts ===

// GetCatalog handles GET /api/v1/streams/{id}/gifts
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.stream(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"gifts": eng.Catalog(),
	})
}

// SendGift handles POST /api/v1/streams/{id}/gifts
func (h *Handler) SendGift(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.stream(w, r)
	if !ok {
		return
	}
	identity := identityFrom(r)

	var req struct {
		GiftID string `json:"gift_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := eng.SendGift(identity.ID, identity.Name, req.GiftID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrUnknownGift):
			respondError(w, http.StatusBadRequest, "UNKNOWN_GIFT", "Unknown gift id")
		case errors.Is(err, wallet.ErrInsufficientFunds):
			respondError(w, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS", "Not enough coins")
		case errors.Is(err, engine.ErrClosed):
			respondError(w, http.StatusGone, "STREAM_CLOSED", "Stream has ended")
		default:
			respondError(w, http.StatusInternalServerError, "SEND_FAILED", "Failed to send gift")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// === Chat & Log ===

// PostChat handles POST /api/v1/streams/{id}/chat
func (h *Handler) PostChat(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.stream(w, r)
	if !ok {
		return
	}
	identity := identityFrom(r)

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Message text required")
		return
	}

	entry, err := eng.PostChat(identity.ID, identity.Name, req.Text, time.Now())
	if err != nil {
		respondError(w, http.StatusGone, "STREAM_CLOSED", "Stream has ended")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// GetLog handles GET /api/v1/streams/{id}/log
func (h *Handler) GetLog(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.stream(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": eng.Entries(),
	})
}

// === Battle ===

// StartBattle handles POST /api/v1/streams/{id}/battle
func (h *Handler) StartBattle(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	if identity.Role != auth.RoleBroadcaster {
		respondError(w, http.StatusForbidden, "BROADCASTER_ONLY", "Only broadcasters can start battles")
		return
	}
	eng, ok := h.stream(w, r)
	if !ok {
		return
	}

	var req struct {
		DurationSeconds int    `json:"duration_seconds"`
		OpponentLabel   string `json:"opponent_label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.OpponentLabel == "" {
		req.OpponentLabel = "Opponent"
	}

	state, err := eng.StartBattle(req.DurationSeconds, req.OpponentLabel, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, battle.ErrAlreadyActive):
			respondError(w, http.StatusConflict, "BATTLE_ACTIVE", "A battle is already running")
		case errors.Is(err, battle.ErrInvalidDuration):
			respondError(w, http.StatusBadRequest, "INVALID_DURATION", "Duration must be positive")
		case errors.Is(err, engine.ErrClosed):
			respondError(w, http.StatusGone, "STREAM_CLOSED", "Stream has ended")
		default:
			respondError(w, http.StatusInternalServerError, "BATTLE_FAILED", "Failed to start battle")
		}
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// StopBattle handles DELETE /api/v1/streams/{id}/battle
func (h *Handler) StopBattle(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	if identity.Role != auth.RoleBroadcaster {
		respondError(w, http.StatusForbidden, "BROADCASTER_ONLY", "Only broadcasters can stop battles")
		return
	}
	eng, ok := h.stream(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, eng.StopBattle(time.Now()))
}

// GetBattle handles GET /api/v1/streams/{id}/battle
func (h *Handler) GetBattle(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.stream(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, eng.BattleState())
}

// OpponentScore handles POST /api/v1/streams/{id}/battle/opponent-score
func (h *Handler) OpponentScore(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.stream(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Positive amount required")
		return
	}
	respondJSON(w, http.StatusOK, eng.ApplyOpponentScore(req.Amount))
}

// === Wallet ===

// GetBalance handles GET /api/v1/streams/{id}/wallet/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.stream(w, r)
	if !ok {
		return
	}
	identity := identityFrom(r)

	balance, err := eng.Balance(identity.ID, identity.Name)
	if err != nil {
		respondError(w, http.StatusGone, "STREAM_CLOSED", "Stream has ended")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"balance": balance,
	})
}

// TopUp handles POST /api/v1/streams/{id}/wallet/topup
func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.stream(w, r)
	if !ok {
		return
	}
	identity := identityFrom(r)

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Positive amount required")
		return
	}

	balance, err := eng.CreditCoins(identity.ID, identity.Name, req.Amount)
	if err != nil {
		respondError(w, http.StatusGone, "STREAM_CLOSED", "Stream has ended")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"balance": balance,
	})
}

// === Playback ===

// PlaybackCompleted handles POST /api/v1/streams/{id}/playback/completed
func (h *Handler) PlaybackCompleted(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.stream(w, r)
	if !ok {
		return
	}

	var req struct {
		Failed bool   `json:"failed"`
		Reason string `json:"reason"`
	}
	// An empty body means a clean completion.
	json.NewDecoder(r.Body).Decode(&req)

	eng.OnAnimationCompleted(req.Failed, req.Reason)

	now, playing := eng.NowPlaying()
	resp := map[string]interface{}{
		"pending": eng.PendingAnimations(),
	}
	if playing {
		resp["now_playing"] = now
	}
	respondJSON(w, http.StatusOK, resp)
}
