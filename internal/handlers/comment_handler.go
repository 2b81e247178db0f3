package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/effisocial/backend/internal/middleware"
	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/services"
)

// CommentHandler handles comments embedded in posts
type CommentHandler struct {
	posts *services.PostService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(posts *services.PostService) *CommentHandler {
	return &CommentHandler{posts: posts}
}

// RegisterCommentRoutes registers comment routes under /posts. Every route
// answers with the updated post.
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/:id/comments", h.CreateComment)
	g.PUT("/:id/comments/:commentId", h.UpdateComment)
	g.DELETE("/:id/comments/:commentId", h.DeleteComment)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.posts.AddComment(c.Request().Context(), middleware.Actor(c), c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// UpdateComment edits a comment; only its author (or an admin) may
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	var req models.CommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.posts.UpdateComment(c.Request().Context(), middleware.Actor(c), c.Param("id"), c.Param("commentId"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	post, err := h.posts.DeleteComment(c.Request().Context(), middleware.Actor(c), c.Param("id"), c.Param("commentId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}
