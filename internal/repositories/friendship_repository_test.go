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

func createUsers(t *testing.T, repo *repositories.PostgresUserRepository, names ...string) []*models.User {
	t.Helper()
	users := make([]*models.User, len(names))
	for i, name := range names {
		u := &models.User{Username: name, Email: name + "@example.com", Password: "x"}
		require.NoError(t, repo.CreateUser(context.Background(), u))
		users[i] = u
	}
	return users
}

func TestPendingFriendRequestIsUnique(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()
	users := createUsers(t, repositories.NewPostgresUserRepository(db), "alice", "bob")
	repo := repositories.NewPostgresFriendshipRepository(db)

	first := &models.FriendRequest{SenderID: users[0].ID, ReceiverID: users[1].ID}
	require.NoError(t, repo.CreateFriendRequest(ctx, first))
	assert.Equal(t, models.StatusPending, first.Status)

	dup := &models.FriendRequest{SenderID: users[0].ID, ReceiverID: users[1].ID}
	assert.ErrorIs(t, repo.CreateFriendRequest(ctx, dup), repositories.ErrDuplicate)

	// the reverse direction is a different pair
	reverse := &models.FriendRequest{SenderID: users[1].ID, ReceiverID: users[0].ID}
	assert.NoError(t, repo.CreateFriendRequest(ctx, reverse))

	// once rejected, a fresh request may be sent
	require.NoError(t, repo.UpdateFriendRequestStatus(ctx, first.ID, models.StatusRejected))
	again := &models.FriendRequest{SenderID: users[0].ID, ReceiverID: users[1].ID}
	assert.NoError(t, repo.CreateFriendRequest(ctx, again))
}

func TestAcceptFriendRequestIsIdempotent(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()
	userRepo := repositories.NewPostgresUserRepository(db)
	users := createUsers(t, userRepo, "alice", "bob")
	repo := repositories.NewPostgresFriendshipRepository(db)

	req := &models.FriendRequest{SenderID: users[0].ID, ReceiverID: users[1].ID}
	require.NoError(t, repo.CreateFriendRequest(ctx, req))

	require.NoError(t, repo.AcceptFriendRequest(ctx, req.ID))
	require.NoError(t, repo.AcceptFriendRequest(ctx, req.ID))

	aliceFriends, err := repo.GetFriendIDs(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{users[1].ID}, aliceFriends)
	bobFriends, err := repo.GetFriendIDs(ctx, users[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{users[0].ID}, bobFriends)

	stored, err := repo.GetFriendRequestByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, stored.Status)

	count, err := repo.CountFriendships(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, userRepo.LoadRelations(ctx, users[0]))
	assert.Equal(t, []uint{users[1].ID}, users[0].Friends)
}

func TestAcceptSettlesReversePendingRequest(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()
	users := createUsers(t, repositories.NewPostgresUserRepository(db), "alice", "bob")
	repo := repositories.NewPostgresFriendshipRepository(db)

	forward := &models.FriendRequest{SenderID: users[0].ID, ReceiverID: users[1].ID}
	require.NoError(t, repo.CreateFriendRequest(ctx, forward))
	reverse := &models.FriendRequest{SenderID: users[1].ID, ReceiverID: users[0].ID}
	require.NoError(t, repo.CreateFriendRequest(ctx, reverse))

	require.NoError(t, repo.AcceptFriendRequest(ctx, forward.ID))

	stored, err := repo.GetFriendRequestByID(ctx, reverse.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, stored.Status)

	pending, err := repo.ListPendingTouching(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	count, err := repo.CountFriendships(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRemoveFriendshipDeletesBothSides(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()
	users := createUsers(t, repositories.NewPostgresUserRepository(db), "alice", "bob")
	repo := repositories.NewPostgresFriendshipRepository(db)

	req := &models.FriendRequest{SenderID: users[0].ID, ReceiverID: users[1].ID}
	require.NoError(t, repo.CreateFriendRequest(ctx, req))
	require.NoError(t, repo.AcceptFriendRequest(ctx, req.ID))

	require.NoError(t, repo.RemoveFriendship(ctx, users[1].ID, users[0].ID))
	ok, err := repo.AreFriends(ctx, users[0].ID, users[1].ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.AreFriends(ctx, users[1].ID, users[0].ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, repo.RemoveFriendship(ctx, users[0].ID, users[1].ID), repositories.ErrNotFound)
}

func TestDeleteFriendRequest(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()
	users := createUsers(t, repositories.NewPostgresUserRepository(db), "alice", "bob")
	repo := repositories.NewPostgresFriendshipRepository(db)

	req := &models.FriendRequest{SenderID: users[0].ID, ReceiverID: users[1].ID}
	require.NoError(t, repo.CreateFriendRequest(ctx, req))

	outgoing, err := repo.ListPendingOutgoing(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Len(t, outgoing, 1)
	incoming, err := repo.ListPendingIncoming(ctx, users[1].ID)
	require.NoError(t, err)
	assert.Len(t, incoming, 1)

	require.NoError(t, repo.DeleteFriendRequest(ctx, req.ID))
	_, err = repo.GetFriendRequestByID(ctx, req.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteFriendRequest(ctx, req.ID), repositories.ErrNotFound)
}
