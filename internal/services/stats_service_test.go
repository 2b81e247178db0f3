package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/effisocial/backend/internal/models"
)

func TestStatsOverview(t *testing.T) {
	e := newTestEnv(t)
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	e.group(t, a, "Stats Club", models.PrivacyPublic)

	req, err := e.friends.SendFriendRequest(e.ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = e.friends.AcceptFriendRequest(e.ctx, b.ID, req.ID)
	require.NoError(t, err)

	p := e.post(t, a, "one", 0)
	e.post(t, b, "two", 0)
	_, err = e.postSvc.Like(e.ctx, b, p.ID.Hex())
	require.NoError(t, err)
	_, err = e.msgSvc.Send(e.ctx, b, models.SendMessageRequest{ReceiverID: a.ID, Content: "hey"}, nil)
	require.NoError(t, err)

	overview, err := e.stats.Overview(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), overview.Users)
	assert.Equal(t, int64(1), overview.Groups)
	assert.Equal(t, int64(1), overview.Friendships)
	assert.Equal(t, int64(2), overview.Posts)
	assert.Equal(t, int64(1), overview.Messages)
	assert.Equal(t, map[string]int64{"none": 2}, overview.PostsByMedia)
	require.Len(t, overview.PostsPerDay, 1)
	assert.Equal(t, int64(2), overview.PostsPerDay[0].Count)
	assert.Equal(t, 1, overview.OnlineUsers)

	mine, err := e.stats.ForUser(e.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.UserStats{
		UserID:        a.ID,
		Posts:         1,
		LikesReceived: 1,
		Friends:       1,
		Groups:        1,
		MessagesSent:  0,
	}, mine)

	_, err = e.stats.ForUser(e.ctx, 999)
	assertKind(t, err, KindNotFound, "")
}
