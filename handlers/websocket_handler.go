package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ozownz/meme-battles/live"
	"github.com/ozownz/meme-battles/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin,
		// чтобы разрешать подключения только с доверенных доменов.
		return true
	},
}

type WebSocketHandler struct {
	hub           *live.Hub
	battleService services.BattleService
}

func NewWebSocketHandler(hub *live.Hub, bs services.BattleService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		battleService: bs,
	}
}

// ServeWs обрабатывает WebSocket подключения для конкретного баттла.
// Клиент подключается к /ws/battles/{battleID}; ID комнаты — это ID баттла.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	battleIDStr := chi.URLParam(r, "battleID")
	battleID, err := strconv.Atoi(battleIDStr)
	if err != nil || battleID <= 0 {
		http.Error(w, "invalid battleID", http.StatusBadRequest)
		return
	}

	// Комнату открываем только для существующего баттла.
	if _, err := h.battleService.GetBattleByID(r.Context(), battleID); err != nil {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade connection for battle %d: %v", battleID, err)
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту.
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: battleIDStr,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
