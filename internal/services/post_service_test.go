package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/effisocial/backend/internal/models"
)

func (e *testEnv) post(t *testing.T, author Actor, content string, groupID uint) *models.Post {
	t.Helper()
	p, err := e.postSvc.Create(e.ctx, author, models.CreatePostRequest{Content: content, GroupID: groupID}, nil)
	require.NoError(t, err)
	return p
}

func TestCreatePostRules(t *testing.T) {
	e := newTestEnv(t)
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	g := e.group(t, a, "Alice Only", models.PrivacyPublic)

	_, err := e.postSvc.Create(e.ctx, a, models.CreatePostRequest{Content: "   "}, nil)
	assertKind(t, err, KindValidation, "")

	_, err = e.postSvc.Create(e.ctx, b, models.CreatePostRequest{Content: "hi", GroupID: g.ID}, nil)
	assertKind(t, err, KindForbidden, "")

	_, err = e.postSvc.Create(e.ctx, a, models.CreatePostRequest{Content: "hi", GroupID: 999}, nil)
	assertKind(t, err, KindNotFound, "")

	p := e.post(t, a, "hello world", 0)
	require.NotNil(t, p.AuthorInfo)
	assert.Equal(t, "alice", p.AuthorInfo.Username)
	assert.Empty(t, p.Likes)
}

func TestDoubleLikeIsNetZero(t *testing.T) {
	e := newTestEnv(t)
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	p := e.post(t, a, "like me", 0)
	id := p.ID.Hex()

	liked, err := e.postSvc.Like(e.ctx, b, id)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, liked.Likes)
	assert.Equal(t, 1, liked.LikeCount)

	unliked, err := e.postSvc.Like(e.ctx, b, id)
	require.NoError(t, err)
	assert.Empty(t, unliked.Likes)
	assert.Equal(t, 0, unliked.LikeCount)

	_, err = e.postSvc.Like(e.ctx, a, id)
	require.NoError(t, err)
	after, err := e.postSvc.Unlike(e.ctx, a, id)
	require.NoError(t, err)
	assert.Empty(t, after.Likes)
	after, err = e.postSvc.Unlike(e.ctx, a, id)
	require.NoError(t, err)
	assert.Equal(t, 0, after.LikeCount)

	_, err = e.postSvc.Like(e.ctx, a, "not-an-id")
	assertKind(t, err, KindNotFound, "")
}

func TestPrivateGroupPostsAreHidden(t *testing.T) {
	e := newTestEnv(t)
	owner := e.user(t, "owner")
	outsider := e.user(t, "outsider")
	root := e.admin(t, "root")
	secret := e.group(t, owner, "Secret", models.PrivacyPrivate)
	open := e.group(t, owner, "Open", models.PrivacyPublic)

	hidden := e.post(t, owner, "members only", secret.ID)
	e.post(t, owner, "everyone", open.ID)
	e.post(t, owner, "timeline", 0)

	page, err := e.postSvc.List(e.ctx, outsider, models.PostListQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)
	for _, p := range page.Posts {
		assert.NotEqual(t, hidden.ID, p.ID)
	}

	_, err = e.postSvc.List(e.ctx, outsider, models.PostListQuery{Group: secret.ID})
	assertKind(t, err, KindForbidden, "")
	_, err = e.postSvc.Get(e.ctx, outsider, hidden.ID.Hex())
	assertKind(t, err, KindForbidden, "")

	page, err = e.postSvc.List(e.ctx, owner, models.PostListQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 3)

	page, err = e.postSvc.List(e.ctx, root, models.PostListQuery{Group: secret.ID})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)
}

func TestListPostsFiltersAndPages(t *testing.T) {
	e := newTestEnv(t)
	a := e.user(t, "alice")
	b := e.user(t, "bob")

	first := e.post(t, a, "first", 0)
	e.post(t, b, "second", 0)
	third := e.post(t, a, "third", 0)
	_, err := e.postSvc.Like(e.ctx, b, first.ID.Hex())
	require.NoError(t, err)

	page, err := e.postSvc.List(e.ctx, a, models.PostListQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, third.ID, page.Posts[0].ID)

	page, err = e.postSvc.List(e.ctx, a, models.PostListQuery{Limit: 2, Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.False(t, page.HasMore)

	page, err = e.postSvc.List(e.ctx, a, models.PostListQuery{Author: a.ID, Sort: "oldest"})
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, first.ID, page.Posts[0].ID)

	page, err = e.postSvc.List(e.ctx, a, models.PostListQuery{Sort: "popular"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, page.Posts[0].ID)

	page, err = e.postSvc.List(e.ctx, a, models.PostListQuery{MediaType: "none"})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 3)

	tomorrow := time.Now().UTC().Add(48 * time.Hour).Format("2006-01-02")
	page, err = e.postSvc.List(e.ctx, a, models.PostListQuery{StartDate: tomorrow})
	require.NoError(t, err)
	assert.Empty(t, page.Posts)

	_, err = e.postSvc.List(e.ctx, a, models.PostListQuery{StartDate: "yesterday"})
	assertKind(t, err, KindValidation, "")
}

func TestPostEditAndDeletePermissions(t *testing.T) {
	e := newTestEnv(t)
	groupAdmin := e.user(t, "gadmin")
	author := e.user(t, "author")
	other := e.user(t, "other")
	g := e.group(t, groupAdmin, "Board", models.PrivacyPublic)
	_, err := e.groups.Join(e.ctx, author, g.ID)
	require.NoError(t, err)

	p := e.post(t, author, "original", g.ID)

	_, err = e.postSvc.Update(e.ctx, other, p.ID.Hex(), models.UpdatePostRequest{Content: strPtr("hacked")}, nil)
	assertKind(t, err, KindForbidden, "")
	updated, err := e.postSvc.Update(e.ctx, author, p.ID.Hex(), models.UpdatePostRequest{Content: strPtr("edited")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	// an update without content keeps the current text
	updated, err = e.postSvc.Update(e.ctx, author, p.ID.Hex(), models.UpdatePostRequest{RemoveMedia: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	stored, err := e.postSvc.Get(e.ctx, author, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "edited", stored.Content)
	_, err = e.postSvc.Update(e.ctx, author, p.ID.Hex(), models.UpdatePostRequest{Content: strPtr("  ")}, nil)
	assertKind(t, err, KindValidation, "")

	assertKind(t, e.postSvc.Delete(e.ctx, other, p.ID.Hex()), KindForbidden, "")
	require.NoError(t, e.postSvc.Delete(e.ctx, groupAdmin, p.ID.Hex()))
	_, err = e.postSvc.Get(e.ctx, author, p.ID.Hex())
	assertKind(t, err, KindNotFound, "post not found")
}

func TestCommentPermissions(t *testing.T) {
	e := newTestEnv(t)
	author := e.user(t, "author")
	commenter := e.user(t, "commenter")
	other := e.user(t, "other")
	p := e.post(t, author, "discuss", 0)
	id := p.ID.Hex()

	_, err := e.postSvc.AddComment(e.ctx, commenter, id, " ")
	assertKind(t, err, KindValidation, "")

	withComment, err := e.postSvc.AddComment(e.ctx, commenter, id, "nice")
	require.NoError(t, err)
	require.Len(t, withComment.Comments, 1)
	commentID := withComment.Comments[0].ID.Hex()

	_, err = e.postSvc.UpdateComment(e.ctx, author, id, commentID, "changed")
	assertKind(t, err, KindForbidden, "")
	edited, err := e.postSvc.UpdateComment(e.ctx, commenter, id, commentID, "very nice")
	require.NoError(t, err)
	assert.Equal(t, "very nice", edited.Comments[0].Content)

	_, err = e.postSvc.DeleteComment(e.ctx, other, id, commentID)
	assertKind(t, err, KindForbidden, "")
	// the post author may remove comments on their post
	cleared, err := e.postSvc.DeleteComment(e.ctx, author, id, commentID)
	require.NoError(t, err)
	assert.Empty(t, cleared.Comments)

	_, err = e.postSvc.DeleteComment(e.ctx, author, id, commentID)
	assertKind(t, err, KindNotFound, "comment not found")
}
