package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/repositories"
	"github.com/anonto42/effisocial/backend/pkg/log"
)

const errAdminCannotLeave = "admin cannot leave the group; transfer admin rights or delete the group first"

// JoinStatus tells the caller what a join attempt did.
type JoinStatus string

const (
	JoinJoined    JoinStatus = "joined"
	JoinRequested JoinStatus = "requested"
)

type JoinResult struct {
	Status  JoinStatus               `json:"status"`
	Group   *models.Group            `json:"group"`
	Request *models.GroupJoinRequest `json:"request,omitempty"`
}

// GroupService enforces group membership and privacy rules.
type GroupService struct {
	groups        repositories.GroupRepository
	users         repositories.UserRepository
	posts         repositories.PostRepository
	media         MediaStore
	notifications *NotificationService
	logger        zerolog.Logger
}

func NewGroupService(groups repositories.GroupRepository, users repositories.UserRepository, posts repositories.PostRepository, media MediaStore, notifications *NotificationService) *GroupService {
	return &GroupService{
		groups:        groups,
		users:         users,
		posts:         posts,
		media:         media,
		notifications: notifications,
		logger:        log.WithComponent("groups"),
	}
}

func (s *GroupService) Create(ctx context.Context, actor Actor, req models.CreateGroupRequest, cover *multipart.FileHeader) (*models.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, Validation("group name is required")
	}
	saved, err := saveMedia(s.media, cover, false)
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:        name,
		Description: req.Description,
		AdminID:     actor.ID,
		Privacy:     req.Privacy,
	}
	if saved != nil {
		group.CoverImage = saved.URL
	}
	if err := s.groups.CreateGroup(ctx, group); err != nil {
		if saved != nil {
			removeMedia(s.media, saved.URL)
		}
		return nil, fmt.Errorf("create group: %w", err)
	}
	return group, nil
}

func (s *GroupService) Get(ctx context.Context, id uint) (*models.Group, error) {
	group, err := s.groups.GetGroupByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "group not found", "get group")
	}
	count, err := s.posts.CountPostsByGroup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count group posts: %w", err)
	}
	group.PostCount = count
	return group, nil
}

// List returns every group, or only the caller's when mine is set.
func (s *GroupService) List(ctx context.Context, actor Actor, mine bool, query string) ([]models.Group, error) {
	filter := models.GroupFilter{Query: strings.TrimSpace(query)}
	if mine {
		filter.MemberID = actor.ID
	}
	groups, err := s.groups.ListGroups(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

func (s *GroupService) Update(ctx context.Context, actor Actor, id uint, req models.UpdateGroupRequest, cover *multipart.FileHeader) (*models.Group, error) {
	group, err := s.manage(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		group.Name = name
	}
	if req.Description != "" {
		group.Description = req.Description
	}
	if req.Privacy != "" {
		group.Privacy = req.Privacy
	}

	saved, err := saveMedia(s.media, cover, false)
	if err != nil {
		return nil, err
	}
	oldCover := ""
	if saved != nil {
		oldCover = group.CoverImage
		group.CoverImage = saved.URL
	}

	if err := s.groups.UpdateGroup(ctx, group); err != nil {
		if saved != nil {
			removeMedia(s.media, saved.URL)
		}
		return nil, fmt.Errorf("update group: %w", err)
	}
	removeMedia(s.media, oldCover)
	return group, nil
}

// Delete removes the group's posts first, then its relational rows in one
// transaction. A failure between the two steps leaves an empty group that
// can be deleted again.
func (s *GroupService) Delete(ctx context.Context, actor Actor, id uint) error {
	group, err := s.manage(ctx, actor, id)
	if err != nil {
		return err
	}
	removed, err := s.posts.DeletePostsByGroup(ctx, id)
	if err != nil {
		return fmt.Errorf("delete group posts: %w", err)
	}
	if err := s.groups.DeleteGroup(ctx, id); err != nil {
		return notFoundOr(err, "group not found", "delete group")
	}
	removeMedia(s.media, group.CoverImage)

	s.logger.Info().Uint("group_id", id).Int64("posts_removed", removed).Uint("by", actor.ID).Msg("group deleted")
	return nil
}

// Join adds the caller to a public group or files a join request for a
// private one.
func (s *GroupService) Join(ctx context.Context, actor Actor, id uint) (*JoinResult, error) {
	group, err := s.groups.GetGroupByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "group not found", "get group")
	}
	if group.HasMember(actor.ID) {
		return nil, Conflict("already a member of this group")
	}

	if !group.IsPrivate() {
		if err := s.groups.AddMember(ctx, id, actor.ID); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return nil, Conflict("already a member of this group")
			}
			return nil, fmt.Errorf("add member: %w", err)
		}
		group.Members = append(group.Members, actor.ID)
		return &JoinResult{Status: JoinJoined, Group: group}, nil
	}

	if _, err := s.groups.FindPendingJoinRequest(ctx, id, actor.ID); err == nil {
		return nil, Conflict("join request already pending")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("check join request: %w", err)
	}
	req := &models.GroupJoinRequest{GroupID: id, UserID: actor.ID, ReceiverID: group.AdminID}
	if err := s.groups.CreateJoinRequest(ctx, req); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Conflict("join request already pending")
		}
		return nil, fmt.Errorf("create join request: %w", err)
	}

	username := "Someone"
	if u, err := s.users.GetUserByID(ctx, actor.ID); err == nil {
		username = u.Username
	}
	s.notifications.Record(ctx, &models.Notification{
		Type:        models.NotifyGroupJoinRequest,
		ActorID:     actor.ID,
		RecipientID: group.AdminID,
		TargetID:    group.ID,
		TargetType:  "group",
		Message:     fmt.Sprintf("%s asked to join %s", username, group.Name),
	})
	return &JoinResult{Status: JoinRequested, Group: group, Request: req}, nil
}

func (s *GroupService) Leave(ctx context.Context, actor Actor, id uint) error {
	group, err := s.groups.GetGroupByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "group not found", "get group")
	}
	if group.AdminID == actor.ID {
		return Validation(errAdminCannotLeave)
	}
	if !group.HasMember(actor.ID) {
		return Validation("not a member of this group")
	}
	return notFoundOr(s.groups.RemoveMember(ctx, id, actor.ID), "not a member of this group", "remove member")
}

// ListJoinRequests returns the pending requests with requester summaries.
func (s *GroupService) ListJoinRequests(ctx context.Context, actor Actor, id uint) ([]models.GroupJoinRequest, error) {
	if _, err := s.manage(ctx, actor, id); err != nil {
		return nil, err
	}
	requests, err := s.groups.ListJoinRequests(ctx, id, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list join requests: %w", err)
	}
	ids := make([]uint, len(requests))
	for i, r := range requests {
		ids[i] = r.UserID
	}
	summaries, err := summariesByID(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		requests[i].User = summaries[requests[i].UserID]
	}
	return requests, nil
}

func (s *GroupService) AcceptJoinRequest(ctx context.Context, actor Actor, groupID, requestID uint) (*models.Group, error) {
	group, req, err := s.pendingJoinRequest(ctx, actor, groupID, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.groups.AcceptJoinRequest(ctx, req.ID); err != nil {
		return nil, notFoundOr(err, "join request not found", "accept join request")
	}

	s.notifications.Record(ctx, &models.Notification{
		Type:        models.NotifyGroupJoinAccepted,
		ActorID:     actor.ID,
		RecipientID: req.UserID,
		TargetID:    group.ID,
		TargetType:  "group",
		Message:     "Your request to join " + group.Name + " was accepted",
	})
	return s.Get(ctx, groupID)
}

func (s *GroupService) DeclineJoinRequest(ctx context.Context, actor Actor, groupID, requestID uint) error {
	_, req, err := s.pendingJoinRequest(ctx, actor, groupID, requestID)
	if err != nil {
		return err
	}
	return notFoundOr(s.groups.UpdateJoinRequestStatus(ctx, req.ID, models.StatusRejected), "join request not found", "decline join request")
}

func (s *GroupService) pendingJoinRequest(ctx context.Context, actor Actor, groupID, requestID uint) (*models.Group, *models.GroupJoinRequest, error) {
	group, err := s.manage(ctx, actor, groupID)
	if err != nil {
		return nil, nil, err
	}
	req, err := s.groups.GetJoinRequestByID(ctx, requestID)
	if err != nil {
		return nil, nil, notFoundOr(err, "join request not found", "get join request")
	}
	if req.GroupID != groupID {
		return nil, nil, NotFound("join request not found")
	}
	if req.Status != models.StatusPending {
		return nil, nil, Conflict("join request is no longer pending")
	}
	return group, req, nil
}

// AddMember lets the admin add a user directly.
func (s *GroupService) AddMember(ctx context.Context, actor Actor, groupID, userID uint) (*models.Group, error) {
	group, err := s.manage(ctx, actor, groupID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "get user")
	}
	return s.addMember(ctx, actor, group, user)
}

// Invite adds a user identified by username or email.
func (s *GroupService) Invite(ctx context.Context, actor Actor, groupID uint, identifier string) (*models.Group, error) {
	group, err := s.manage(ctx, actor, groupID)
	if err != nil {
		return nil, err
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, Validation("username or email is required")
	}

	var user *models.User
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetUserByEmail(ctx, identifier)
	} else {
		user, err = s.users.GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, notFoundOr(err, "user not found", "find user")
	}
	return s.addMember(ctx, actor, group, user)
}

func (s *GroupService) addMember(ctx context.Context, actor Actor, group *models.Group, user *models.User) (*models.Group, error) {
	if group.HasMember(user.ID) {
		return nil, Conflict("user is already a member of this group")
	}
	if err := s.groups.AddMember(ctx, group.ID, user.ID); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Conflict("user is already a member of this group")
		}
		return nil, fmt.Errorf("add member: %w", err)
	}
	// a pending request from the same user is now moot
	if req, err := s.groups.FindPendingJoinRequest(ctx, group.ID, user.ID); err == nil {
		_ = s.groups.UpdateJoinRequestStatus(ctx, req.ID, models.StatusAccepted)
	}

	s.notifications.Record(ctx, &models.Notification{
		Type:        models.NotifyGroupMemberAdded,
		ActorID:     actor.ID,
		RecipientID: user.ID,
		TargetID:    group.ID,
		TargetType:  "group",
		Message:     "You were added to " + group.Name,
	})
	group.Members = append(group.Members, user.ID)
	return group, nil
}

func (s *GroupService) RemoveMember(ctx context.Context, actor Actor, groupID, userID uint) (*models.Group, error) {
	group, err := s.manage(ctx, actor, groupID)
	if err != nil {
		return nil, err
	}
	if userID == group.AdminID {
		return nil, Validation("cannot remove the group admin")
	}
	if !group.HasMember(userID) {
		return nil, NotFound("user is not a member of this group")
	}
	if err := s.groups.RemoveMember(ctx, groupID, userID); err != nil {
		return nil, notFoundOr(err, "user is not a member of this group", "remove member")
	}
	return s.groups.GetGroupByID(ctx, groupID)
}

// TransferAdmin hands admin rights to another member. The previous admin
// remains a member.
func (s *GroupService) TransferAdmin(ctx context.Context, actor Actor, groupID, userID uint) (*models.Group, error) {
	group, err := s.manage(ctx, actor, groupID)
	if err != nil {
		return nil, err
	}
	if userID == group.AdminID {
		return nil, Validation("user is already the group admin")
	}
	if !group.HasMember(userID) {
		return nil, Validation("new admin must be a member of the group")
	}
	if err := s.groups.SetAdmin(ctx, groupID, userID); err != nil {
		return nil, notFoundOr(err, "group not found", "set admin")
	}
	group.AdminID = userID
	return group, nil
}

// manage loads the group and checks the caller may administer it.
func (s *GroupService) manage(ctx context.Context, actor Actor, id uint) (*models.Group, error) {
	group, err := s.groups.GetGroupByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "group not found", "get group")
	}
	if group.AdminID != actor.ID && !actor.Admin {
		return nil, Forbidden("only the group admin can do this")
	}
	return group, nil
}
