package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/repositories"
)

type UserService struct {
	users  repositories.UserRepository
	groups repositories.GroupRepository
	media  MediaStore
}

func NewUserService(users repositories.UserRepository, groups repositories.GroupRepository, media MediaStore) *UserService {
	return &UserService{users: users, groups: groups, media: media}
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "get user")
	}
	if err := s.users.LoadRelations(ctx, user); err != nil {
		return nil, fmt.Errorf("load relations: %w", err)
	}
	return user, nil
}

// Summaries resolves the given ids, skipping unknown users.
func (s *UserService) Summaries(ctx context.Context, ids []uint) ([]models.UserSummary, error) {
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, actor Actor, req models.UpdateProfileRequest, picture *multipart.FileHeader) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "get user")
	}

	if username := strings.TrimSpace(req.Username); username != "" {
		if !strings.EqualFold(username, user.Username) {
			if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
				return nil, Conflict("username already taken")
			} else if !errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("lookup username: %w", err)
			}
		}
		user.Username = username
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	saved, err := saveMedia(s.media, picture, false)
	if err != nil {
		return nil, err
	}
	oldPicture := ""
	if saved != nil {
		oldPicture = user.ProfilePicture
		user.ProfilePicture = saved.URL
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if saved != nil {
			removeMedia(s.media, saved.URL)
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Conflict("username already taken")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	removeMedia(s.media, oldPicture)

	if err := s.users.LoadRelations(ctx, user); err != nil {
		return nil, fmt.Errorf("load relations: %w", err)
	}
	return user, nil
}

// Delete removes an account. Users may delete themselves and admins anyone,
// but not while the account still administers a group.
func (s *UserService) Delete(ctx context.Context, actor Actor, id uint) error {
	if actor.ID != id && !actor.Admin {
		return Forbidden("not allowed to delete this user")
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "user not found", "get user")
	}
	groups, err := s.groups.ListGroups(ctx, models.GroupFilter{MemberID: id})
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}
	for _, g := range groups {
		if g.AdminID == id {
			return Conflict("user administers groups; transfer or delete them first")
		}
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return notFoundOr(err, "user not found", "delete user")
	}
	removeMedia(s.media, user.ProfilePicture)
	return nil
}

// Promote grants the admin role to the account with the given email.
func (s *UserService) Promote(ctx context.Context, email string) error {
	return notFoundOr(s.users.SetRole(ctx, email, models.RoleAdmin), "user not found", "set role")
}
