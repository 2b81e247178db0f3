package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/repositories"
	"github.com/anonto42/effisocial/backend/internal/repositories/repotest"
)

type pushed struct {
	UserID  uint
	Event   string
	Payload interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []pushed
}

func (r *recordingNotifier) Notify(userID uint, event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, pushed{UserID: userID, Event: event, Payload: payload})
}

func (r *recordingNotifier) For(userID uint) []pushed {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []pushed
	for _, e := range r.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

type staticPresence []uint

func (p staticPresence) Online() []uint { return p }

type testEnv struct {
	ctx context.Context

	users         *repositories.PostgresUserRepository
	friendships   *repositories.PostgresFriendshipRepository
	groupRepo     *repositories.PostgresGroupRepository
	notifications repositories.NotificationRepository
	posts         *repotest.PostStore
	messages      *repotest.MessageStore
	notifier      *recordingNotifier

	auth     *AuthService
	friends  *FriendService
	groups   *GroupService
	postSvc  *PostService
	msgSvc   *MessageService
	stats    *StatsService
	userSvc  *UserService
	inbox    *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := repotest.NewDB(t)

	e := &testEnv{
		ctx:           context.Background(),
		users:         repositories.NewPostgresUserRepository(db),
		friendships:   repositories.NewPostgresFriendshipRepository(db),
		groupRepo:     repositories.NewPostgresGroupRepository(db),
		notifications: repositories.NewPostgresNotificationRepository(db),
		posts:         repotest.NewPostStore(),
		messages:      repotest.NewMessageStore(),
		notifier:      &recordingNotifier{},
	}
	e.inbox = NewNotificationService(e.notifications, e.notifier)
	e.auth = NewAuthService(e.users, "test-secret", time.Hour, nil)
	e.friends = NewFriendService(e.users, e.friendships, e.inbox)
	e.groups = NewGroupService(e.groupRepo, e.users, e.posts, nil, e.inbox)
	e.postSvc = NewPostService(e.posts, e.groupRepo, e.users, nil)
	e.msgSvc = NewMessageService(e.messages, e.users, nil, e.notifier)
	e.stats = NewStatsService(e.users, e.friendships, e.groupRepo, e.posts, e.messages, staticPresence{1})
	e.userSvc = NewUserService(e.users, e.groupRepo, nil)
	return e
}

func (e *testEnv) user(t *testing.T, name string) Actor {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, e.users.CreateUser(e.ctx, u))
	return Actor{ID: u.ID}
}

func (e *testEnv) admin(t *testing.T, name string) Actor {
	t.Helper()
	a := e.user(t, name)
	require.NoError(t, e.users.SetRole(e.ctx, name+"@example.com", models.RoleAdmin))
	a.Admin = true
	return a
}

func (e *testEnv) loadUser(t *testing.T, id uint) *models.User {
	t.Helper()
	u, err := e.userSvc.Get(e.ctx, id)
	require.NoError(t, err)
	return u
}

func strPtr(s string) *string { return &s }

func assertKind(t *testing.T, err error, kind Kind, message string) {
	t.Helper()
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, kind, se.Kind)
	if message != "" {
		assert.Equal(t, message, se.Message)
	}
}
