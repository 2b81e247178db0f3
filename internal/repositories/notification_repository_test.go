package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/repositories"
	"github.com/anonto42/effisocial/backend/internal/repositories/repotest"
)

func TestNotificationInbox(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()
	repo := repositories.NewPostgresNotificationRepository(db)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateNotification(ctx, &models.Notification{
			Type:        models.NotifyFriendRequest,
			ActorID:     2,
			RecipientID: 1,
			Message:     "hello",
		}))
	}
	require.NoError(t, repo.CreateNotification(ctx, &models.Notification{Type: models.NotifyFriendAccepted, ActorID: 1, RecipientID: 2}))

	page, total, err := repo.GetByRecipientID(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	unread, err := repo.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	// another user's notification cannot be marked
	assert.ErrorIs(t, repo.MarkAsRead(ctx, page[0].ID, 2), repositories.ErrNotFound)
	require.NoError(t, repo.MarkAsRead(ctx, page[0].ID, 1))

	unread, err = repo.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, repo.MarkAllAsRead(ctx, 1))
	unread, err = repo.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
