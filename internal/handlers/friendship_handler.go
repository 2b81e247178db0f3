package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/effisocial/backend/internal/middleware"
	"github.com/anonto42/effisocial/backend/internal/services"
)

// FriendshipHandler handles friend requests, the friend list and user search
type FriendshipHandler struct {
	friends *services.FriendService
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friends *services.FriendService) *FriendshipHandler {
	return &FriendshipHandler{friends: friends}
}

// RegisterFriendshipRoutes registers friendship-related routes under /users
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.GET("/search", h.SearchUsers)
	g.GET("/friends", h.GetFriends)
	g.DELETE("/friends/:id", h.Unfriend)
	g.GET("/friend-requests", h.GetIncomingRequests)
	g.GET("/outgoing-friend-requests", h.GetOutgoingRequests)
	g.POST("/:id/friend-request", h.SendFriendRequest)
	g.PUT("/friend-request/:id/accept", h.AcceptFriendRequest)
	g.PUT("/friend-request/:id/reject", h.RejectFriendRequest)
	g.DELETE("/friend-request/:id", h.CancelFriendRequest)
}

// SendFriendRequest sends a request from the caller to the user in the path
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	receiverID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	req, err := h.friends.SendFriendRequest(c.Request().Context(), middleware.UserID(c), receiverID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	req, err := h.friends.AcceptFriendRequest(c.Request().Context(), middleware.UserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}

func (h *FriendshipHandler) RejectFriendRequest(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	req, err := h.friends.RejectFriendRequest(c.Request().Context(), middleware.UserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}

// CancelFriendRequest withdraws a pending request the caller sent
func (h *FriendshipHandler) CancelFriendRequest(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.friends.CancelFriendRequest(c.Request().Context(), middleware.UserID(c), id); err != nil {
		return err
	}
	return ok(c, "friend request cancelled")
}

func (h *FriendshipHandler) GetIncomingRequests(c echo.Context) error {
	requests, err := h.friends.ListIncoming(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requests)
}

func (h *FriendshipHandler) GetOutgoingRequests(c echo.Context) error {
	requests, err := h.friends.ListOutgoing(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requests)
}

func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	friends, err := h.friends.ListFriends(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, friends)
}

// Unfriend removes the friendship in both directions
func (h *FriendshipHandler) Unfriend(c echo.Context) error {
	friendID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.friends.Unfriend(c.Request().Context(), middleware.UserID(c), friendID); err != nil {
		return err
	}
	return ok(c, "friend removed")
}

// SearchUsers matches users by username, email or bio and reports the live
// relation to each of them
func (h *FriendshipHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		query = c.QueryParam("q")
	}
	results, err := h.friends.Search(c.Request().Context(), middleware.UserID(c), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, results)
}
