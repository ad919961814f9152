package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/footmatch/realtime"
	"github.com/gorilla/websocket"
)

// RoomAttacher is implemented by *realtime.Hub.
type RoomAttacher interface {
	Attach(conn *websocket.Conn, room string)
}

type WebSocketHandler struct {
	hub      RoomAttacher
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts connections from allowedOrigins; an empty list
// or "*" allows any origin.
func NewWebSocketHandler(hub RoomAttacher, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || allowed["*"] || origin == "" || allowed[origin]
			},
		},
	}
}

// ServeWs подключает клиента к комнате матча /ws/matches/{matchID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		slog.Warn("websocket upgrade failed", "match_id", matchID, "error", err)
		return
	}

	h.hub.Attach(conn, realtime.MatchRoom(matchID))
}
