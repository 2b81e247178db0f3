package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MediaType string

const (
	MediaNone  MediaType = ""
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Post represents a social media post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Content   string             `json:"content" bson:"content"`
	Media     string             `json:"media,omitempty" bson:"media,omitempty"`
	MediaType MediaType          `json:"mediaType,omitempty" bson:"media_type,omitempty"`
	AuthorID  uint               `json:"author" bson:"author_id"`
	GroupID   *uint              `json:"group,omitempty" bson:"group_id,omitempty"`
	Likes     []uint             `json:"likes" bson:"likes"`
	LikeCount int                `json:"likeCount" bson:"like_count"`
	Comments  []Comment          `json:"comments" bson:"comments"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`

	AuthorInfo *UserSummary `json:"authorInfo,omitempty" bson:"-"`
}

func (p *Post) LikedBy(userID uint) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CommentIndex returns the position of the comment in the embedded array or -1.
func (p *Post) CommentIndex(commentID primitive.ObjectID) int {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return i
		}
	}
	return -1
}

type PostSort string

const (
	SortNewest  PostSort = "newest"
	SortOldest  PostSort = "oldest"
	SortPopular PostSort = "popular"
)

// PostFilter narrows a post listing. VisibleGroups, when non-nil, restricts
// group posts to those groups; posts without a group are always visible.
type PostFilter struct {
	GroupID       *uint
	AuthorID      *uint
	MediaType     *MediaType
	StartDate     *time.Time
	EndDate       *time.Time
	Sort          PostSort
	Skip          int64
	Limit         int64
	VisibleGroups []uint
}

// CreatePostRequest defines the multipart fields for creating a new post
type CreatePostRequest struct {
	Content string `form:"content" json:"content" validate:"max=5000"`
	GroupID uint   `form:"group" json:"group"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content     *string `form:"content" json:"content" validate:"omitempty,max=5000"` // nil keeps the current content
	RemoveMedia bool    `form:"removeMedia" json:"removeMedia"`
}

type PostListQuery struct {
	Group     uint   `query:"group"`
	Author    uint   `query:"author"`
	MediaType string `query:"mediaType" validate:"omitempty,oneof=image video none"`
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
	Sort      string `query:"sort" validate:"omitempty,oneof=newest oldest popular"`
	Page      int64  `query:"page" validate:"min=0"`
	Limit     int64  `query:"limit" validate:"min=0,max=100"`
}
