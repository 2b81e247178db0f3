package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/repositories"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PostPage is one page of a post listing.
type PostPage struct {
	Posts   []models.Post `json:"posts"`
	Page    int64         `json:"page"`
	Limit   int64         `json:"limit"`
	HasMore bool          `json:"hasMore"`
}

// PostService handles posts, their likes and their comments.
type PostService struct {
	posts  repositories.PostRepository
	groups repositories.GroupRepository
	users  repositories.UserRepository
	media  MediaStore
}

func NewPostService(posts repositories.PostRepository, groups repositories.GroupRepository, users repositories.UserRepository, media MediaStore) *PostService {
	return &PostService{
		posts:  posts,
		groups: groups,
		users:  users,
		media:  media,
	}
}

func (s *PostService) Create(ctx context.Context, actor Actor, req models.CreatePostRequest, media *multipart.FileHeader) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" && media == nil {
		return nil, Validation("post needs content or media")
	}

	post := &models.Post{Content: content, AuthorID: actor.ID}
	if req.GroupID != 0 {
		if _, err := s.groups.GetGroupByID(ctx, req.GroupID); err != nil {
			return nil, notFoundOr(err, "group not found", "get group")
		}
		member, err := s.groups.IsMember(ctx, req.GroupID, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("check membership: %w", err)
		}
		if !member && !actor.Admin {
			return nil, Forbidden("only group members can post in this group")
		}
		groupID := req.GroupID
		post.GroupID = &groupID
	}

	saved, err := saveMedia(s.media, media, true)
	if err != nil {
		return nil, err
	}
	if saved != nil {
		post.Media = saved.URL
		post.MediaType = models.MediaType(saved.Kind)
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		if saved != nil {
			removeMedia(s.media, saved.URL)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.withAuthor(ctx, post)
}

// List applies the query filters and hides posts of private groups the
// viewer does not belong to.
func (s *PostService) List(ctx context.Context, actor Actor, q models.PostListQuery) (*PostPage, error) {
	filter := models.PostFilter{Sort: models.PostSort(q.Sort)}
	if q.Author != 0 {
		author := q.Author
		filter.AuthorID = &author
	}
	if q.MediaType != "" {
		mt := models.MediaType(q.MediaType)
		if q.MediaType == "none" {
			mt = models.MediaNone
		}
		filter.MediaType = &mt
	}
	var err error
	if filter.StartDate, err = parseDate(q.StartDate, false); err != nil {
		return nil, err
	}
	if filter.EndDate, err = parseDate(q.EndDate, true); err != nil {
		return nil, err
	}

	if q.Group != 0 {
		if err := s.checkGroupVisible(ctx, actor, q.Group); err != nil {
			return nil, err
		}
		group := q.Group
		filter.GroupID = &group
	} else if !actor.Admin {
		visible, err := s.visibleGroups(ctx, actor)
		if err != nil {
			return nil, err
		}
		filter.VisibleGroups = visible
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	filter.Skip = (page - 1) * limit
	// one extra row tells whether another page exists
	filter.Limit = limit + 1

	posts, err := s.posts.ListPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	hasMore := int64(len(posts)) > limit
	if hasMore {
		posts = posts[:limit]
	}
	if err := s.attachAuthors(ctx, posts); err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Page: page, Limit: limit, HasMore: hasMore}, nil
}

func parseDate(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, Validation("invalid date %q, expected YYYY-MM-DD or RFC3339", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func (s *PostService) visibleGroups(ctx context.Context, actor Actor) ([]uint, error) {
	public, err := s.groups.GetPublicGroupIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public groups: %w", err)
	}
	mine, err := s.groups.GetGroupIDsForUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list user groups: %w", err)
	}
	return append(public, mine...), nil
}

func (s *PostService) checkGroupVisible(ctx context.Context, actor Actor, groupID uint) error {
	group, err := s.groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return notFoundOr(err, "group not found", "get group")
	}
	if group.IsPrivate() && !group.HasMember(actor.ID) && !actor.Admin {
		return Forbidden("this group is private")
	}
	return nil
}

// load fetches a post the actor is allowed to see.
func (s *PostService) load(ctx context.Context, actor Actor, id string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "post not found", "get post")
	}
	if post.GroupID != nil {
		if err := s.checkGroupVisible(ctx, actor, *post.GroupID); err != nil {
			if IsKind(err, KindNotFound) {
				return nil, NotFound("post not found")
			}
			return nil, err
		}
	}
	return post, nil
}

func (s *PostService) Get(ctx context.Context, actor Actor, id string) (*models.Post, error) {
	post, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.withAuthor(ctx, post)
}

func (s *PostService) Update(ctx context.Context, actor Actor, id string, req models.UpdatePostRequest, media *multipart.FileHeader) (*models.Post, error) {
	post, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID && !actor.Admin {
		return nil, Forbidden("only the author can edit this post")
	}

	saved, err := saveMedia(s.media, media, true)
	if err != nil {
		return nil, err
	}
	oldMedia := ""
	switch {
	case saved != nil:
		oldMedia = post.Media
		post.Media = saved.URL
		post.MediaType = models.MediaType(saved.Kind)
	case req.RemoveMedia:
		oldMedia = post.Media
		post.Media = ""
		post.MediaType = models.MediaNone
	}
	if req.Content != nil {
		post.Content = strings.TrimSpace(*req.Content)
	}
	if post.Content == "" && post.Media == "" {
		if saved != nil {
			removeMedia(s.media, saved.URL)
		}
		return nil, Validation("post needs content or media")
	}

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if saved != nil {
			removeMedia(s.media, saved.URL)
		}
		return nil, notFoundOr(err, "post not found", "update post")
	}
	removeMedia(s.media, oldMedia)
	return s.withAuthor(ctx, post)
}

// Delete is allowed for the author, a global admin or the admin of the
// post's group.
func (s *PostService) Delete(ctx context.Context, actor Actor, id string) error {
	post, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	allowed := post.AuthorID == actor.ID || actor.Admin
	if !allowed && post.GroupID != nil {
		group, err := s.groups.GetGroupByID(ctx, *post.GroupID)
		if err == nil && group.AdminID == actor.ID {
			allowed = true
		}
	}
	if !allowed {
		return Forbidden("not allowed to delete this post")
	}
	if err := s.posts.DeletePost(ctx, id); err != nil {
		return notFoundOr(err, "post not found", "delete post")
	}
	removeMedia(s.media, post.Media)
	return nil
}

// Like toggles the caller's like.
func (s *PostService) Like(ctx context.Context, actor Actor, id string) (*models.Post, error) {
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	post, err := s.posts.ToggleLike(ctx, id, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "post not found", "toggle like")
	}
	return s.withAuthor(ctx, post)
}

func (s *PostService) Unlike(ctx context.Context, actor Actor, id string) (*models.Post, error) {
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	post, err := s.posts.RemoveLike(ctx, id, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "post not found", "remove like")
	}
	return s.withAuthor(ctx, post)
}

func (s *PostService) AddComment(ctx context.Context, actor Actor, id, content string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, Validation("comment content is required")
	}
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	post, err := s.posts.AddComment(ctx, id, &models.Comment{Content: content, AuthorID: actor.ID})
	if err != nil {
		return nil, notFoundOr(err, "post not found", "add comment")
	}
	return s.withAuthor(ctx, post)
}

func (s *PostService) UpdateComment(ctx context.Context, actor Actor, id, commentID, content string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, Validation("comment content is required")
	}
	post, comment, err := s.loadComment(ctx, actor, id, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actor.ID && !actor.Admin {
		return nil, Forbidden("only the comment author can edit this comment")
	}
	updated, err := s.posts.UpdateComment(ctx, post.ID.Hex(), commentID, content)
	if err != nil {
		return nil, notFoundOr(err, "comment not found", "update comment")
	}
	return s.withAuthor(ctx, updated)
}

// DeleteComment is allowed for the comment author, the post author or a
// global admin.
func (s *PostService) DeleteComment(ctx context.Context, actor Actor, id, commentID string) (*models.Post, error) {
	post, comment, err := s.loadComment(ctx, actor, id, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actor.ID && post.AuthorID != actor.ID && !actor.Admin {
		return nil, Forbidden("not allowed to delete this comment")
	}
	updated, err := s.posts.DeleteComment(ctx, post.ID.Hex(), commentID)
	if err != nil {
		return nil, notFoundOr(err, "comment not found", "delete comment")
	}
	return s.withAuthor(ctx, updated)
}

func (s *PostService) loadComment(ctx context.Context, actor Actor, id, commentID string) (*models.Post, *models.Comment, error) {
	cID, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return nil, nil, NotFound("comment not found")
	}
	post, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	idx := post.CommentIndex(cID)
	if idx < 0 {
		return nil, nil, NotFound("comment not found")
	}
	return post, &post.Comments[idx], nil
}

func (s *PostService) withAuthor(ctx context.Context, post *models.Post) (*models.Post, error) {
	posts := []models.Post{*post}
	if err := s.attachAuthors(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (s *PostService) attachAuthors(ctx context.Context, posts []models.Post) error {
	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].AuthorID
	}
	summaries, err := summariesByID(ctx, s.users, ids)
	if err != nil {
		return err
	}
	for i := range posts {
		posts[i].AuthorInfo = summaries[posts[i].AuthorID]
	}
	return nil
}
