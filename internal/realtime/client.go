package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type joinPayload struct {
	UserID uint `json:"userId"`
}

// Serve runs an upgraded connection for an authenticated user until the
// client goes away. The writer runs on its own goroutine; Serve blocks in the
// reader.
func (h *Hub) Serve(conn *websocket.Conn, userID uint) {
	s := h.Register(userID)
	go h.writePump(conn, s)
	h.readPump(conn, s)
}

func (h *Hub) readPump(conn *websocket.Conn, s *Session) {
	defer func() {
		h.Unregister(s)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Str("session", s.ID).Msg("websocket read failed")
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.SendError(s, "malformed frame")
			continue
		}

		switch frame.Event {
		case EventJoin:
			var p joinPayload
			if len(frame.Data) > 0 && string(frame.Data) != "null" {
				if err := json.Unmarshal(frame.Data, &p); err != nil {
					h.SendError(s, "malformed join payload")
					continue
				}
			}
			if p.UserID != 0 && p.UserID != s.UserID {
				h.SendError(s, "cannot join as another user")
				continue
			}
			h.Join(s)
		case EventLeave:
			h.Leave(s)
		default:
			h.SendError(s, "unknown event: "+frame.Event)
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, s *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
