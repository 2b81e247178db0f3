package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/effisocial/backend/internal/models"
)

func (e *testEnv) group(t *testing.T, admin Actor, name string, privacy models.Privacy) *models.Group {
	t.Helper()
	g, err := e.groups.Create(e.ctx, admin, models.CreateGroupRequest{Name: name, Privacy: privacy}, nil)
	require.NoError(t, err)
	return g
}

func TestPublicJoinAddsMember(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user(t, "admin")
	joiner := e.user(t, "joiner")
	g := e.group(t, admin, "Open Group", models.PrivacyPublic)
	assert.Equal(t, []uint{admin.ID}, g.Members)

	res, err := e.groups.Join(e.ctx, joiner, g.ID)
	require.NoError(t, err)
	assert.Equal(t, JoinJoined, res.Status)

	loaded, err := e.groups.Get(e.ctx, g.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{admin.ID, joiner.ID}, loaded.Members)
	assert.Equal(t, []uint{g.ID}, e.loadUser(t, joiner.ID).Groups)

	_, err = e.groups.Join(e.ctx, joiner, g.ID)
	assertKind(t, err, KindConflict, "")
}

func TestPrivateJoinCreatesRequest(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user(t, "admin")
	joiner := e.user(t, "joiner")
	g := e.group(t, admin, "Closed Group", models.PrivacyPrivate)

	res, err := e.groups.Join(e.ctx, joiner, g.ID)
	require.NoError(t, err)
	assert.Equal(t, JoinRequested, res.Status)
	require.NotNil(t, res.Request)
	assert.Equal(t, admin.ID, res.Request.ReceiverID)

	loaded, err := e.groups.Get(e.ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{admin.ID}, loaded.Members)

	_, err = e.groups.Join(e.ctx, joiner, g.ID)
	assertKind(t, err, KindConflict, "join request already pending")

	// the admin is told about the request
	events := e.notifier.For(admin.ID)
	require.Len(t, events, 1)
	n := events[0].Payload.(*models.Notification)
	assert.Equal(t, models.NotifyGroupJoinRequest, n.Type)

	_, err = e.groups.ListJoinRequests(e.ctx, joiner, g.ID)
	assertKind(t, err, KindForbidden, "")

	requests, err := e.groups.ListJoinRequests(e.ctx, admin, g.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.NotNil(t, requests[0].User)
	assert.Equal(t, "joiner", requests[0].User.Username)

	accepted, err := e.groups.AcceptJoinRequest(e.ctx, admin, g.ID, requests[0].ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{admin.ID, joiner.ID}, accepted.Members)

	_, err = e.groups.AcceptJoinRequest(e.ctx, admin, g.ID, requests[0].ID)
	assertKind(t, err, KindConflict, "")
}

func TestDeclineJoinRequest(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user(t, "admin")
	joiner := e.user(t, "joiner")
	g := e.group(t, admin, "Closed Group", models.PrivacyPrivate)

	res, err := e.groups.Join(e.ctx, joiner, g.ID)
	require.NoError(t, err)
	require.NoError(t, e.groups.DeclineJoinRequest(e.ctx, admin, g.ID, res.Request.ID))

	loaded, err := e.groups.Get(e.ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{admin.ID}, loaded.Members)

	// a new request may follow a declined one
	_, err = e.groups.Join(e.ctx, joiner, g.ID)
	assert.NoError(t, err)
}

func TestAdminCannotLeaveUntilTransfer(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user(t, "admin")
	member := e.user(t, "member")
	outsider := e.user(t, "outsider")
	g := e.group(t, admin, "Club", models.PrivacyPublic)
	_, err := e.groups.Join(e.ctx, member, g.ID)
	require.NoError(t, err)

	err = e.groups.Leave(e.ctx, admin, g.ID)
	assertKind(t, err, KindValidation, "admin cannot leave the group; transfer admin rights or delete the group first")

	_, err = e.groups.TransferAdmin(e.ctx, admin, g.ID, outsider.ID)
	assertKind(t, err, KindValidation, "")
	_, err = e.groups.TransferAdmin(e.ctx, member, g.ID, member.ID)
	assertKind(t, err, KindForbidden, "")

	updated, err := e.groups.TransferAdmin(e.ctx, admin, g.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, updated.AdminID)
	assert.True(t, updated.HasMember(admin.ID))

	require.NoError(t, e.groups.Leave(e.ctx, admin, g.ID))
	loaded, err := e.groups.Get(e.ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{member.ID}, loaded.Members)

	assertKind(t, e.groups.Leave(e.ctx, outsider, g.ID), KindValidation, "")
}

func TestDeleteGroupCascades(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user(t, "admin")
	member := e.user(t, "member")
	g := e.group(t, admin, "Doomed", models.PrivacyPublic)
	_, err := e.groups.Join(e.ctx, member, g.ID)
	require.NoError(t, err)

	_, err = e.postSvc.Create(e.ctx, member, models.CreatePostRequest{Content: "in group", GroupID: g.ID}, nil)
	require.NoError(t, err)
	outside, err := e.postSvc.Create(e.ctx, member, models.CreatePostRequest{Content: "outside"}, nil)
	require.NoError(t, err)

	loaded, err := e.groups.Get(e.ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.PostCount)

	assertKind(t, e.groups.Delete(e.ctx, member, g.ID), KindForbidden, "")
	require.NoError(t, e.groups.Delete(e.ctx, admin, g.ID))

	_, err = e.groups.Get(e.ctx, g.ID)
	assertKind(t, err, KindNotFound, "")
	assert.Empty(t, e.loadUser(t, admin.ID).Groups)
	assert.Empty(t, e.loadUser(t, member.ID).Groups)

	count, err := e.posts.CountPosts(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	_, err = e.posts.GetPostByID(e.ctx, outside.ID.Hex())
	assert.NoError(t, err)
}

func TestAdminMemberManagement(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user(t, "admin")
	bob := e.user(t, "bob")
	carol := e.user(t, "carol")
	g := e.group(t, admin, "Managed", models.PrivacyPrivate)

	_, err := e.groups.AddMember(e.ctx, bob, g.ID, carol.ID)
	assertKind(t, err, KindForbidden, "")

	updated, err := e.groups.AddMember(e.ctx, admin, g.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, updated.HasMember(bob.ID))
	_, err = e.groups.AddMember(e.ctx, admin, g.ID, bob.ID)
	assertKind(t, err, KindConflict, "")

	updated, err = e.groups.Invite(e.ctx, admin, g.ID, "carol@example.com")
	require.NoError(t, err)
	assert.True(t, updated.HasMember(carol.ID))
	_, err = e.groups.Invite(e.ctx, admin, g.ID, "nobody")
	assertKind(t, err, KindNotFound, "")

	_, err = e.groups.RemoveMember(e.ctx, admin, g.ID, admin.ID)
	assertKind(t, err, KindValidation, "")

	updated, err = e.groups.RemoveMember(e.ctx, admin, g.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, updated.HasMember(bob.ID))

	added := 0
	for _, ev := range e.notifier.For(carol.ID) {
		if ev.Payload.(*models.Notification).Type == models.NotifyGroupMemberAdded {
			added++
		}
	}
	assert.Equal(t, 1, added)
}

func TestGlobalAdminManagesAnyGroup(t *testing.T) {
	e := newTestEnv(t)
	owner := e.user(t, "owner")
	root := e.admin(t, "root")
	g := e.group(t, owner, "Someone Else's", models.PrivacyPublic)

	updated, err := e.groups.Update(e.ctx, root, g.ID, models.UpdateGroupRequest{Name: "Renamed", Privacy: models.PrivacyPrivate}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, updated.IsPrivate())

	require.NoError(t, e.groups.Delete(e.ctx, root, g.ID))
}

func TestListGroups(t *testing.T) {
	e := newTestEnv(t)
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	e.group(t, a, "Alice Fans", models.PrivacyPublic)
	e.group(t, b, "Bob Fans", models.PrivacyPublic)

	all, err := e.groups.List(e.ctx, a, false, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := e.groups.List(e.ctx, a, true, "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Alice Fans", mine[0].Name)

	found, err := e.groups.List(e.ctx, a, false, "bob")
	require.NoError(t, err)
	require.Len(t, found, 1)
}
