package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/effisocial/backend/internal/middleware"
	"github.com/anonto42/effisocial/backend/internal/services"
)

// LikeHandler handles likes on posts
type LikeHandler struct {
	posts *services.PostService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(posts *services.PostService) *LikeHandler {
	return &LikeHandler{posts: posts}
}

// RegisterLikeRoutes registers like routes under /posts
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.PUT("/:id/like", h.LikePost)
	g.PUT("/:id/unlike", h.UnlikePost)
}

// LikePost toggles the caller's like; liking twice leaves the post unliked
func (h *LikeHandler) LikePost(c echo.Context) error {
	post, err := h.posts.Like(c.Request().Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// UnlikePost removes the caller's like if present
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	post, err := h.posts.Unlike(c.Request().Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}
