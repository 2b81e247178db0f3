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

func TestCreateGroupAddsAdminAsMember(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()
	users := createUsers(t, repositories.NewPostgresUserRepository(db), "alice")
	repo := repositories.NewPostgresGroupRepository(db)

	group := &models.Group{Name: "Gophers", AdminID: users[0].ID}
	require.NoError(t, repo.CreateGroup(ctx, group))
	assert.Equal(t, models.PrivacyPublic, group.Privacy)

	loaded, err := repo.GetGroupByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{users[0].ID}, loaded.Members)

	ids, err := repo.GetGroupIDsForUser(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{group.ID}, ids)
}

func TestListGroupsFilters(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()
	users := createUsers(t, repositories.NewPostgresUserRepository(db), "alice", "bob")
	repo := repositories.NewPostgresGroupRepository(db)

	require.NoError(t, repo.CreateGroup(ctx, &models.Group{Name: "Go Lovers", AdminID: users[0].ID}))
	require.NoError(t, repo.CreateGroup(ctx, &models.Group{Name: "Rustaceans", AdminID: users[1].ID, Privacy: models.PrivacyPrivate}))

	all, err := repo.ListGroups(ctx, models.GroupFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := repo.ListGroups(ctx, models.GroupFilter{MemberID: users[1].ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Rustaceans", mine[0].Name)

	found, err := repo.ListGroups(ctx, models.GroupFilter{Query: "go"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Go Lovers", found[0].Name)

	public, err := repo.GetPublicGroupIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{found[0].ID}, public)
}

func TestJoinRequestLifecycle(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()
	users := createUsers(t, repositories.NewPostgresUserRepository(db), "alice", "bob")
	repo := repositories.NewPostgresGroupRepository(db)

	group := &models.Group{Name: "Secret", AdminID: users[0].ID, Privacy: models.PrivacyPrivate}
	require.NoError(t, repo.CreateGroup(ctx, group))

	req := &models.GroupJoinRequest{GroupID: group.ID, UserID: users[1].ID, ReceiverID: users[0].ID}
	require.NoError(t, repo.CreateJoinRequest(ctx, req))
	dup := &models.GroupJoinRequest{GroupID: group.ID, UserID: users[1].ID, ReceiverID: users[0].ID}
	assert.ErrorIs(t, repo.CreateJoinRequest(ctx, dup), repositories.ErrDuplicate)

	member, err := repo.IsMember(ctx, group.ID, users[1].ID)
	require.NoError(t, err)
	assert.False(t, member)

	require.NoError(t, repo.AcceptJoinRequest(ctx, req.ID))
	member, err = repo.IsMember(ctx, group.ID, users[1].ID)
	require.NoError(t, err)
	assert.True(t, member)

	pending, err := repo.ListJoinRequests(ctx, group.ID, models.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDeleteGroupRemovesMemberships(t *testing.T) {
	db := repotest.NewDB(t)
	ctx := context.Background()
	userRepo := repositories.NewPostgresUserRepository(db)
	users := createUsers(t, userRepo, "alice", "bob")
	repo := repositories.NewPostgresGroupRepository(db)

	group := &models.Group{Name: "Temporary", AdminID: users[0].ID}
	require.NoError(t, repo.CreateGroup(ctx, group))
	require.NoError(t, repo.AddMember(ctx, group.ID, users[1].ID))
	assert.ErrorIs(t, repo.AddMember(ctx, group.ID, users[1].ID), repositories.ErrDuplicate)

	require.NoError(t, repo.DeleteGroup(ctx, group.ID))
	_, err := repo.GetGroupByID(ctx, group.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, userRepo.LoadRelations(ctx, users[1]))
	assert.Empty(t, users[1].Groups)
	assert.ErrorIs(t, repo.DeleteGroup(ctx, group.ID), repositories.ErrNotFound)
}
