package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/effisocial/backend/internal/middleware"
	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/services"
)

// GroupHandler handles groups, their membership and join requests
type GroupHandler struct {
	groups *services.GroupService
}

func NewGroupHandler(groups *services.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// RegisterGroupRoutes registers group routes under /groups
func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.GET("", h.ListGroups)
	g.POST("", h.CreateGroup)
	g.GET("/:id", h.GetGroup)
	g.PUT("/:id", h.UpdateGroup)
	g.DELETE("/:id", h.DeleteGroup)

	g.POST("/:id/join", h.JoinGroup)
	g.POST("/:id/leave", h.LeaveGroup)
	g.GET("/:id/join-requests", h.ListJoinRequests)
	g.POST("/:id/join-requests/:reqId/accept", h.AcceptJoinRequest)
	g.POST("/:id/join-requests/:reqId/decline", h.DeclineJoinRequest)

	g.POST("/:id/invite", h.Invite)
	g.POST("/:id/add-member", h.AddMember)
	g.POST("/:id/remove-member", h.RemoveMember)
	g.POST("/:id/transfer-admin", h.TransferAdmin)
}

// ListGroups lists all groups, or only the caller's with mine=true,
// optionally filtered by a name query
func (h *GroupHandler) ListGroups(c echo.Context) error {
	mine, _ := strconv.ParseBool(c.QueryParam("mine"))
	groups, err := h.groups.List(c.Request().Context(), middleware.Actor(c), mine, c.QueryParam("query"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, groups)
}

// CreateGroup accepts JSON or multipart with an optional coverImage file
func (h *GroupHandler) CreateGroup(c echo.Context) error {
	var req models.CreateGroupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cover, err := optionalFile(c, "coverImage")
	if err != nil {
		return err
	}
	group, err := h.groups.Create(c.Request().Context(), middleware.Actor(c), req, cover)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, group)
}

func (h *GroupHandler) GetGroup(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	group, err := h.groups.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) UpdateGroup(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateGroupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cover, err := optionalFile(c, "coverImage")
	if err != nil {
		return err
	}
	group, err := h.groups.Update(c.Request().Context(), middleware.Actor(c), id, req, cover)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) DeleteGroup(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.groups.Delete(c.Request().Context(), middleware.Actor(c), id); err != nil {
		return err
	}
	return ok(c, "group deleted")
}

// JoinGroup joins a public group or files a join request for a private one
func (h *GroupHandler) JoinGroup(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	res, err := h.groups.Join(c.Request().Context(), middleware.Actor(c), id)
	if err != nil {
		return err
	}
	status := http.StatusOK
	if res.Status == services.JoinRequested {
		status = http.StatusAccepted
	}
	return c.JSON(status, res)
}

func (h *GroupHandler) LeaveGroup(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.groups.Leave(c.Request().Context(), middleware.Actor(c), id); err != nil {
		return err
	}
	return ok(c, "left the group")
}

func (h *GroupHandler) ListJoinRequests(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	requests, err := h.groups.ListJoinRequests(c.Request().Context(), middleware.Actor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requests)
}

func (h *GroupHandler) AcceptJoinRequest(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	reqID, err := uintParam(c, "reqId")
	if err != nil {
		return err
	}
	group, err := h.groups.AcceptJoinRequest(c.Request().Context(), middleware.Actor(c), id, reqID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) DeclineJoinRequest(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	reqID, err := uintParam(c, "reqId")
	if err != nil {
		return err
	}
	if err := h.groups.DeclineJoinRequest(c.Request().Context(), middleware.Actor(c), id, reqID); err != nil {
		return err
	}
	return ok(c, "join request declined")
}

// Invite adds a user, found by username or email, directly to the group
func (h *GroupHandler) Invite(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.GroupInviteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	group, err := h.groups.Invite(c.Request().Context(), middleware.Actor(c), id, req.Identifier)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) AddMember(c echo.Context) error {
	return h.memberOp(c, h.groups.AddMember)
}

func (h *GroupHandler) RemoveMember(c echo.Context) error {
	return h.memberOp(c, h.groups.RemoveMember)
}

func (h *GroupHandler) TransferAdmin(c echo.Context) error {
	return h.memberOp(c, h.groups.TransferAdmin)
}

type memberFunc func(ctx context.Context, actor services.Actor, groupID, userID uint) (*models.Group, error)

func (h *GroupHandler) memberOp(c echo.Context, op memberFunc) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.GroupMemberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	group, err := op(c.Request().Context(), middleware.Actor(c), id, req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, group)
}
