package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/effisocial/backend/internal/middleware"
	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/services"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	users    *services.UserService
	presence services.Presence
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService, presence services.Presence) *UserHandler {
	return &UserHandler{users: users, presence: presence}
}

// RegisterProfileRoutes registers user profile routes under /users
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/online", h.GetOnlineUsers)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/:id", h.GetUser)
	g.DELETE("/:id", h.DeleteUser)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the caller's username, bio and profile picture
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	picture, err := optionalFile(c, "profilePicture")
	if err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.Request().Context(), middleware.Actor(c), req, picture)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser deletes an account; users may delete themselves, admins anyone
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.Request().Context(), middleware.Actor(c), id); err != nil {
		return err
	}
	return ok(c, "user deleted")
}

// GetOnlineUsers lists the users with a live session on this instance
func (h *UserHandler) GetOnlineUsers(c echo.Context) error {
	ids := []uint{}
	if h.presence != nil {
		ids = h.presence.Online()
	}
	users, err := h.users.Summaries(c.Request().Context(), ids)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"userIds": ids, "users": users})
}
