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

func TestUserLookups(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()
	repo := repositories.NewPostgresUserRepository(db)
	users := createUsers(t, repo, "alice", "bob")

	assert.Equal(t, models.RoleUser, users[0].Role)

	byEmail, err := repo.GetUserByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, users[0].ID, byEmail.ID)

	byName, err := repo.GetUserByUsername(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, users[1].ID, byName.ID)

	_, err = repo.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	dup := &models.User{Username: "alice", Email: "other@example.com"}
	assert.ErrorIs(t, repo.CreateUser(ctx, dup), repositories.ErrDuplicate)
}

func TestSearchUsersExcludesCaller(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()
	repo := repositories.NewPostgresUserRepository(db)
	users := createUsers(t, repo, "alice", "alicia", "bob")

	found, err := repo.SearchUsers(ctx, "ALI", users[0].ID, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "alicia", found[0].Username)

	byEmail, err := repo.SearchUsers(ctx, "example.com", users[0].ID, 10)
	require.NoError(t, err)
	assert.Len(t, byEmail, 2)
}

func TestSetRoleAndDelete(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()
	repo := repositories.NewPostgresUserRepository(db)
	users := createUsers(t, repo, "alice", "bob")
	friendships := repositories.NewPostgresFriendshipRepository(db)

	require.NoError(t, repo.SetRole(ctx, "alice@example.com", models.RoleAdmin))
	alice, err := repo.GetUserByID(ctx, users[0].ID)
	require.NoError(t, err)
	assert.True(t, alice.IsAdmin())
	assert.ErrorIs(t, repo.SetRole(ctx, "nobody@example.com", models.RoleAdmin), repositories.ErrNotFound)

	req := &models.FriendRequest{SenderID: users[0].ID, ReceiverID: users[1].ID}
	require.NoError(t, friendships.CreateFriendRequest(ctx, req))
	require.NoError(t, friendships.AcceptFriendRequest(ctx, req.ID))

	require.NoError(t, repo.DeleteUser(ctx, users[0].ID))
	ids, err := friendships.GetFriendIDs(ctx, users[1].ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	count, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
