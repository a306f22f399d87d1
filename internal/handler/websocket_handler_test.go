package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/budgettracker/tracker-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockUserChecker is a test double for user lookups
type mockUserChecker struct {
	exists bool
	err    error
}

func (m *mockUserChecker) UserExists(id int64) (bool, error) {
	return m.exists, m.err
}

var testAllowedOrigins = []string{"http://localhost:3000", "https://budgettracker.app"}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	var httpErr *echo.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, code, httpErr.Code)
}

func TestWebSocketHandler_HandleWS_MissingUserID(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), &mockUserChecker{exists: true}, testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assertHTTPError(t, h.HandleWS(c), http.StatusBadRequest)
}

func TestWebSocketHandler_HandleWS_InvalidUserID(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), &mockUserChecker{exists: true}, testAllowedOrigins)

	for _, raw := range []string{"abc", "0", "-4"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ws?userId="+raw, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		assertHTTPError(t, h.HandleWS(c), http.StatusBadRequest)
	}
}

func TestWebSocketHandler_HandleWS_UnknownUser(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), &mockUserChecker{exists: false}, testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws?userId=7", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assertHTTPError(t, h.HandleWS(c), http.StatusNotFound)
}

func TestWebSocketHandler_HandleWS_LookupFailure(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), &mockUserChecker{err: errors.New("db down")}, testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws?userId=7", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assertHTTPError(t, h.HandleWS(c), http.StatusInternalServerError)
}

func TestWebSocketHandler_HandleWS_KnownUser_NoUpgrade(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), &mockUserChecker{exists: true}, testAllowedOrigins)

	// Known user but not a WebSocket upgrade request
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws?userId=42", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.HandleWS(c)

	// gorilla/websocket returns an error when upgrade fails (no upgrade headers)
	assert.Error(t, err)
	var httpErr *echo.HTTPError
	assert.False(t, errors.As(err, &httpErr))
}

func TestWebSocketHandler_HandleWS_RegistersClient(t *testing.T) {
	hub := websocket.NewHub()
	h := NewWebSocketHandler(hub, &mockUserChecker{exists: true}, testAllowedOrigins)

	e := echo.New()
	e.GET("/api/v1/ws", h.HandleWS)
	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws?userId=5"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool {
		return hub.ClientCount(5) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(5, websocket.ExpenseCreated(map[string]int{"id": 1}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(message), `"entity":"expense"`)
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), &mockUserChecker{exists: true}, testAllowedOrigins)

	tests := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"allowed origin", "http://localhost:3000", true},
		{"allowed origin https", "https://budgettracker.app", true},
		{"disallowed origin", "https://evil.com", false},
		{"empty origin (same-origin)", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.expected, h.checkOrigin(req))
		})
	}
}
