package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/repositories"
)

type storedPost struct {
	post models.Post
	seq  int
}

// PostStore is an in-memory PostRepository and PostStatsRepository.
type PostStore struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]*storedPost
	seq   int
	Now   func() time.Time
}

func NewPostStore() *PostStore {
	return &PostStore{
		posts: make(map[primitive.ObjectID]*storedPost),
		Now:   time.Now,
	}
}

var (
	_ repositories.PostRepository      = (*PostStore)(nil)
	_ repositories.PostStatsRepository = (*PostStore)(nil)
)

func clonePost(p models.Post) *models.Post {
	p.Likes = append([]uint{}, p.Likes...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	if p.GroupID != nil {
		g := *p.GroupID
		p.GroupID = &g
	}
	return &p
}

func (s *PostStore) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = primitive.NewObjectID()
	now := s.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []uint{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	s.seq++
	s.posts[post.ID] = &storedPost{post: *clonePost(*post), seq: s.seq}
	return nil
}

func (s *PostStore) find(id string) (*storedPost, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrInvalidID
	}
	sp, ok := s.posts[objID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return sp, nil
}

func (s *PostStore) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return clonePost(sp.post), nil
}

func matches(p *models.Post, f models.PostFilter) bool {
	if f.GroupID != nil {
		if p.GroupID == nil || *p.GroupID != *f.GroupID {
			return false
		}
	} else if f.VisibleGroups != nil && p.GroupID != nil {
		visible := false
		for _, g := range f.VisibleGroups {
			if g == *p.GroupID {
				visible = true
				break
			}
		}
		if !visible {
			return false
		}
	}
	if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
		return false
	}
	if f.MediaType != nil && p.MediaType != *f.MediaType {
		return false
	}
	if f.StartDate != nil && p.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && p.CreatedAt.After(*f.EndDate) {
		return false
	}
	return true
}

func (s *PostStore) ListPosts(_ context.Context, f models.PostFilter) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []*storedPost
	for _, sp := range s.posts {
		if matches(&sp.post, f) {
			found = append(found, sp)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		a, b := found[i], found[j]
		switch f.Sort {
		case models.SortOldest:
			return a.seq < b.seq
		case models.SortPopular:
			if a.post.LikeCount != b.post.LikeCount {
				return a.post.LikeCount > b.post.LikeCount
			}
		}
		return a.seq > b.seq
	})

	posts := []models.Post{}
	for i, sp := range found {
		if int64(i) < f.Skip {
			continue
		}
		if f.Limit > 0 && int64(len(posts)) >= f.Limit {
			break
		}
		posts = append(posts, *clonePost(sp.post))
	}
	return posts, nil
}

func (s *PostStore) UpdatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.posts[post.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	post.UpdatedAt = s.Now().UTC()
	sp.post.Content = post.Content
	sp.post.Media = post.Media
	sp.post.MediaType = post.MediaType
	sp.post.UpdatedAt = post.UpdatedAt
	return nil
}

func (s *PostStore) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.find(id)
	if err != nil {
		return err
	}
	delete(s.posts, sp.post.ID)
	return nil
}

func (s *PostStore) DeletePostsByGroup(_ context.Context, groupID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sp := range s.posts {
		if sp.post.GroupID != nil && *sp.post.GroupID == groupID {
			delete(s.posts, id)
			n++
		}
	}
	return n, nil
}

func (s *PostStore) CountPostsByGroup(_ context.Context, groupID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, sp := range s.posts {
		if sp.post.GroupID != nil && *sp.post.GroupID == groupID {
			n++
		}
	}
	return n, nil
}

func (s *PostStore) ToggleLike(_ context.Context, id string, userID uint) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !removeLike(&sp.post, userID) {
		sp.post.Likes = append(sp.post.Likes, userID)
		sp.post.LikeCount++
	}
	return clonePost(sp.post), nil
}

func (s *PostStore) RemoveLike(_ context.Context, id string, userID uint) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.find(id)
	if err != nil {
		return nil, err
	}
	removeLike(&sp.post, userID)
	return clonePost(sp.post), nil
}

func removeLike(p *models.Post, userID uint) bool {
	for i, id := range p.Likes {
		if id == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			p.LikeCount--
			return true
		}
	}
	return false
}

func (s *PostStore) AddComment(_ context.Context, id string, comment *models.Comment) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.find(id)
	if err != nil {
		return nil, err
	}
	comment.ID = primitive.NewObjectID()
	now := s.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	sp.post.Comments = append(sp.post.Comments, *comment)
	return clonePost(sp.post), nil
}

func (s *PostStore) commentIndex(id, commentID string) (*storedPost, int, error) {
	sp, err := s.find(id)
	if err != nil {
		return nil, 0, err
	}
	cID, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return nil, 0, repositories.ErrInvalidID
	}
	idx := sp.post.CommentIndex(cID)
	if idx < 0 {
		return nil, 0, repositories.ErrNotFound
	}
	return sp, idx, nil
}

func (s *PostStore) UpdateComment(_ context.Context, id, commentID, content string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, idx, err := s.commentIndex(id, commentID)
	if err != nil {
		return nil, err
	}
	sp.post.Comments[idx].Content = content
	sp.post.Comments[idx].UpdatedAt = s.Now().UTC()
	return clonePost(sp.post), nil
}

func (s *PostStore) DeleteComment(_ context.Context, id, commentID string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, idx, err := s.commentIndex(id, commentID)
	if err != nil {
		return nil, err
	}
	sp.post.Comments = append(sp.post.Comments[:idx], sp.post.Comments[idx+1:]...)
	return clonePost(sp.post), nil
}

func (s *PostStore) CountPosts(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.posts)), nil
}

func (s *PostStore) CountPostsByAuthor(_ context.Context, authorID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, sp := range s.posts {
		if sp.post.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (s *PostStore) CountByMediaType(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int64)
	for _, sp := range s.posts {
		key := string(sp.post.MediaType)
		if key == "" {
			key = "none"
		}
		counts[key]++
	}
	return counts, nil
}

func (s *PostStore) PostsPerDay(_ context.Context, since time.Time) ([]models.DailyCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDay := make(map[string]int64)
	for _, sp := range s.posts {
		if sp.post.CreatedAt.Before(since) {
			continue
		}
		byDay[sp.post.CreatedAt.UTC().Format("2006-01-02")]++
	}
	days := make([]models.DailyCount, 0, len(byDay))
	for d, n := range byDay {
		days = append(days, models.DailyCount{Date: d, Count: n})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

func (s *PostStore) LikesReceived(_ context.Context, authorID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, sp := range s.posts {
		if sp.post.AuthorID == authorID {
			n += int64(sp.post.LikeCount)
		}
	}
	return n, nil
}
