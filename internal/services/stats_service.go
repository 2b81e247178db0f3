package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/repositories"
)

const statsWindowDays = 30

// Presence reports the users currently online. *realtime.Hub satisfies it.
type Presence interface {
	Online() []uint
}

// StatsService aggregates counters across both stores.
type StatsService struct {
	users       repositories.UserRepository
	friendships repositories.FriendshipRepository
	groups      repositories.GroupRepository
	posts       repositories.PostStatsRepository
	messages    repositories.MessageRepository
	presence    Presence
	now         func() time.Time
}

func NewStatsService(users repositories.UserRepository, friendships repositories.FriendshipRepository, groups repositories.GroupRepository, posts repositories.PostStatsRepository, messages repositories.MessageRepository, presence Presence) *StatsService {
	return &StatsService{
		users:       users,
		friendships: friendships,
		groups:      groups,
		posts:       posts,
		messages:    messages,
		presence:    presence,
		now:         time.Now,
	}
}

func (s *StatsService) Overview(ctx context.Context) (*models.StatsOverview, error) {
	var (
		out models.StatsOverview
		err error
	)
	if out.Users, err = s.users.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if out.Groups, err = s.groups.CountGroups(ctx); err != nil {
		return nil, fmt.Errorf("count groups: %w", err)
	}
	if out.Friendships, err = s.friendships.CountFriendships(ctx); err != nil {
		return nil, fmt.Errorf("count friendships: %w", err)
	}
	if out.Posts, err = s.posts.CountPosts(ctx); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if out.Messages, err = s.messages.CountMessages(ctx); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	if out.PostsByMedia, err = s.posts.CountByMediaType(ctx); err != nil {
		return nil, fmt.Errorf("count posts by media: %w", err)
	}

	since := s.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -(statsWindowDays - 1))
	if out.PostsPerDay, err = s.posts.PostsPerDay(ctx, since); err != nil {
		return nil, fmt.Errorf("posts per day: %w", err)
	}
	if s.presence != nil {
		out.OnlineUsers = len(s.presence.Online())
	}
	return &out, nil
}

func (s *StatsService) ForUser(ctx context.Context, userID uint) (*models.UserStats, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, notFoundOr(err, "user not found", "get user")
	}

	out := models.UserStats{UserID: userID}
	var err error
	if out.Posts, err = s.posts.CountPostsByAuthor(ctx, userID); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if out.LikesReceived, err = s.posts.LikesReceived(ctx, userID); err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	friends, err := s.friendships.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	out.Friends = int64(len(friends))
	groups, err := s.groups.GetGroupIDsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	out.Groups = int64(len(groups))
	if out.MessagesSent, err = s.messages.CountSentBy(ctx, userID); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	return &out, nil
}
