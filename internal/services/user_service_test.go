package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/effisocial/backend/internal/models"
)

func TestUpdateProfile(t *testing.T) {
	e := newTestEnv(t)
	a := e.user(t, "alice")
	e.user(t, "bob")

	_, err := e.userSvc.UpdateProfile(e.ctx, a, models.UpdateProfileRequest{Username: "BOB"}, nil)
	assertKind(t, err, KindConflict, "username already taken")

	updated, err := e.userSvc.UpdateProfile(e.ctx, a, models.UpdateProfileRequest{Username: "Alice", Bio: strPtr("hello")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Username)
	assert.Equal(t, "hello", updated.Bio)
	assert.NotNil(t, updated.Friends)

	// fields missing from the request stay as they are
	updated, err = e.userSvc.UpdateProfile(e.ctx, a, models.UpdateProfileRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", e.loadUser(t, a.ID).Bio)
	assert.Equal(t, "Alice", updated.Username)

	updated, err = e.userSvc.UpdateProfile(e.ctx, a, models.UpdateProfileRequest{Bio: strPtr("")}, nil)
	require.NoError(t, err)
	assert.Empty(t, updated.Bio)
}

func TestDeleteUser(t *testing.T) {
	e := newTestEnv(t)
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	root := e.admin(t, "root")
	g := e.group(t, a, "Alice's", models.PrivacyPublic)

	assertKind(t, e.userSvc.Delete(e.ctx, b, a.ID), KindForbidden, "")
	assertKind(t, e.userSvc.Delete(e.ctx, a, a.ID), KindConflict, "")

	require.NoError(t, e.groups.Delete(e.ctx, a, g.ID))
	require.NoError(t, e.userSvc.Delete(e.ctx, a, a.ID))
	_, err := e.userSvc.Get(e.ctx, a.ID)
	assertKind(t, err, KindNotFound, "")

	require.NoError(t, e.userSvc.Delete(e.ctx, root, b.ID))
	assertKind(t, e.userSvc.Delete(e.ctx, root, b.ID), KindNotFound, "")
}

func TestPromoteAndSummaries(t *testing.T) {
	e := newTestEnv(t)
	a := e.user(t, "alice")
	b := e.user(t, "bob")

	require.NoError(t, e.userSvc.Promote(e.ctx, "alice@example.com"))
	assert.True(t, e.loadUser(t, a.ID).IsAdmin())
	assertKind(t, e.userSvc.Promote(e.ctx, "ghost@example.com"), KindNotFound, "")

	summaries, err := e.userSvc.Summaries(e.ctx, []uint{a.ID, b.ID, 999})
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}

func TestNotificationInboxService(t *testing.T) {
	e := newTestEnv(t)
	a := e.user(t, "alice")
	b := e.user(t, "bob")

	e.inbox.Record(e.ctx, &models.Notification{Type: models.NotifyFriendRequest, ActorID: a.ID, RecipientID: a.ID})
	assert.Empty(t, e.notifier.For(a.ID))

	_, err := e.friends.SendFriendRequest(e.ctx, b.ID, a.ID)
	require.NoError(t, err)

	page, err := e.inbox.List(e.ctx, a.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, int64(1), page.Unread)
	require.Len(t, page.Notifications, 1)

	assertKind(t, e.inbox.MarkRead(e.ctx, b.ID, page.Notifications[0].ID), KindNotFound, "")
	require.NoError(t, e.inbox.MarkRead(e.ctx, a.ID, page.Notifications[0].ID))

	page, err = e.inbox.List(e.ctx, a.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Unread)
	require.NoError(t, e.inbox.MarkAllRead(e.ctx, a.ID))
}
