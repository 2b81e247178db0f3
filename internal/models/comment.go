package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is embedded in its post document
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Content   string             `json:"content" bson:"content"`
	AuthorID  uint               `json:"author" bson:"author_id"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// CommentRequest defines the request body for creating or editing a comment
type CommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}
