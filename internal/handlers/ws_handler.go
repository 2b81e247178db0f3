package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/anonto42/effisocial/backend/internal/middleware"
	"github.com/anonto42/effisocial/backend/internal/realtime"
)

// WSHandler upgrades authenticated requests to realtime sessions
type WSHandler struct {
	hub *realtime.Hub
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Connect binds the session to the user of the bearer token; the client's
// join frame can only confirm that identity.
func (h *WSHandler) Connect(c echo.Context) error {
	conn, err := realtime.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		return nil
	}
	h.hub.Serve(conn, middleware.UserID(c))
	return nil
}
