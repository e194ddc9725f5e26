package handlers

import (
	"log"
	"net/http"

	"github.com/UkralStul/blog-api/internal/realtime"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHandler отдает живую ленту новых постов и комментариев
// по вебсокету на GET /api/stream.
type StreamHandler struct {
	Observer *realtime.Observer
}

// Stream апгрейдит соединение и пишет события подписчика до закрытия.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id, events := h.Observer.Subscribe()
	defer h.Observer.Unsubscribe(id)

	// Читатель нужен только чтобы заметить закрытие со стороны клиента
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
