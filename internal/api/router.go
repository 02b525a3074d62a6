// Package api - Router setup
package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRouter creates and configures the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(RecoveryMiddleware)
	r.Use(CORSMiddleware)
	r.Use(LoggingMiddleware)

	// Public routes
	r.HandleFunc("/", h.ServerInfo).Methods("GET")
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// Auth routes (public)
	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/join", h.Join).Methods("POST")
	authRoutes.HandleFunc("/broadcast", h.Broadcast).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(h.AuthMiddleware)

	// Streams
	protected.HandleFunc("/streams", h.CreateStream).Methods("POST")
	protected.HandleFunc("/streams", h.ListStreams).Methods("GET")
	protected.HandleFunc("/streams/{id}", h.GetStream).Methods("GET")
	protected.HandleFunc("/streams/{id}", h.CloseStream).Methods("DELETE")

	// Gifts
	protected.HandleFunc("/streams/{id}/gifts", h.GetCatalog).Methods("GET")
	protected.HandleFunc("/streams/{id}/gifts", h.SendGift).Methods("POST")

	// Chat & log
	protected.HandleFunc("/streams/{id}/chat", h.PostChat).Methods("POST")
	protected.HandleFunc("/streams/{id}/log", h.GetLog).Methods("GET")

	// Battle
	protected.HandleFunc("/streams/{id}/battle", h.StartBattle).Methods("POST")
	protected.HandleFunc("/streams/{id}/battle", h.GetBattle).Methods("GET")
	protected.HandleFunc("/streams/{id}/battle", h.StopBattle).Methods("DELETE")
	protected.HandleFunc("/streams/{id}/battle/opponent-score", h.OpponentScore).Methods("POST")

	// Wallet
	protected.HandleFunc("/streams/{id}/wallet/balance", h.GetBalance).Methods("GET")
	protected.HandleFunc("/streams/{id}/wallet/topup", h.TopUp).Methods("POST")

	// Playback surface
	protected.HandleFunc("/streams/{id}/playback/completed", h.PlaybackCompleted).Methods("POST")

	// WebSocket event feed
	protected.HandleFunc("/ws/streams/{id}", h.HandleWebSocket).Methods("GET")

	return r
}

// NotFoundHandler handles 404 errors
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}
