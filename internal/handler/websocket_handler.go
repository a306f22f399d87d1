package handler

import (
	"net/http"

	"github.com/budgettracker/tracker-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// UserChecker confirms that a user is registered before a socket is opened
type UserChecker interface {
	UserExists(id int64) (bool, error)
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *websocket.Hub
	users          UserChecker
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, users UserChecker, allowedOrigins []string) *WebSocketHandler {
	// Build origin lookup map
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		users:          users,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Allow requests with no Origin header (e.g., same-origin or non-browser clients)
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles WebSocket connection requests at GET /ws?userId=N
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	userID, ok := parseQueryID(c, "userId")
	if !ok {
		log.Debug().Str("user_id", c.QueryParam("userId")).Msg("WebSocket connection rejected: invalid user id")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid userId")
	}

	exists, err := h.users.UserExists(userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("WebSocket user lookup failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "user lookup failed")
	}
	if !exists {
		log.Debug().Int64("user_id", userID).Msg("WebSocket connection rejected: unknown user")
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	// Create client and register with hub
	client := websocket.NewClient(conn, userID, h.hub)
	h.hub.Register(client)

	log.Info().
		Int64("user_id", userID).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	// Start read/write pumps in goroutines
	go client.WritePump()
	go client.ReadPump()

	return nil
}
