package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a direct message stored in MongoDB
type Message struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SenderID   uint               `json:"sender" bson:"sender_id"`
	ReceiverID uint               `json:"receiver" bson:"receiver_id"`
	Content    string             `json:"content" bson:"content"`
	Media      string             `json:"media,omitempty" bson:"media,omitempty"`
	MediaType  MediaType          `json:"mediaType,omitempty" bson:"media_type,omitempty"`
	Read       bool               `json:"read" bson:"read"`
	CreatedAt  time.Time          `json:"createdAt" bson:"created_at"`
}

// Conversation summarises the exchange with one counterpart.
type Conversation struct {
	UserID      uint         `json:"userId" bson:"_id"`
	LastMessage Message      `json:"lastMessage" bson:"last_message"`
	UnreadCount int          `json:"unreadCount" bson:"unread_count"`
	User        *UserSummary `json:"user,omitempty" bson:"-"`
}

type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver" form:"receiver" validate:"required"`
	Content    string `json:"content" form:"content" validate:"max=5000"`
}
