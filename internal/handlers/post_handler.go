package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/effisocial/backend/internal/middleware"
	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/services"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post routes under /posts
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("", h.GetPosts)
	g.POST("", h.CreatePost)
	g.GET("/:id", h.GetPost)
	g.PUT("/:id", h.UpdatePost)
	g.DELETE("/:id", h.DeletePost)
}

// CreatePost creates a post from multipart content, an optional media file
// and an optional group id
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	media, err := optionalFile(c, "media")
	if err != nil {
		return err
	}
	post, err := h.posts.Create(c.Request().Context(), middleware.Actor(c), req, media)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a single post by its ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.Get(c.Request().Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// GetPosts lists posts filtered by group, author, media type and date range
func (h *PostHandler) GetPosts(c echo.Context) error {
	var q models.PostListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	page, err := h.posts.List(c.Request().Context(), middleware.Actor(c), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// UpdatePost edits the content and media of an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	media, err := optionalFile(c, "media")
	if err != nil {
		return err
	}
	post, err := h.posts.Update(c.Request().Context(), middleware.Actor(c), c.Param("id"), req, media)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.posts.Delete(c.Request().Context(), middleware.Actor(c), c.Param("id")); err != nil {
		return err
	}
	return ok(c, "post deleted")
}
