package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Dosada05/tournament-engine/events"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *events.Hub
	engine   TournamentEngine
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler разрешает подключения только с allowedOrigins; "*" разрешает все.
func NewWebSocketHandler(hub *events.Hub, engine TournamentEngine, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		engine: engine,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || slices.Contains(allowedOrigins, "*") {
					return true
				}
				return slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// ServeWs обрабатывает WebSocket запросы для конкретного турнира.
// Клиент должен подключаться к /ws/tournaments/{tournamentID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.engine.GetTournament(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту
		h.logger.Warn("websocket upgrade failed",
			slog.String("tournament_id", tournamentID),
			slog.Any("error", err))
		return
	}

	client := events.NewClient(h.hub, conn, events.RoomForTournament(tournamentID))
	if !h.hub.Join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client joined",
		slog.String("tournament_id", tournamentID),
		slog.String("room", client.Room))
}
