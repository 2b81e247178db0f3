package models

import "time"

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

// FriendRequest is a directed proposal of friendship. At most one pending
// request may exist per ordered (sender, receiver) pair; the partial unique
// index enforces it at the storage level.
type FriendRequest struct {
	ID         uint          `json:"id" gorm:"primaryKey"`
	SenderID   uint          `json:"sender" gorm:"not null;index;uniqueIndex:idx_friend_requests_pending,where:status = 'pending'"`
	ReceiverID uint          `json:"receiver" gorm:"not null;index;uniqueIndex:idx_friend_requests_pending,where:status = 'pending'"`
	Status     RequestStatus `json:"status" gorm:"size:20;not null;default:pending;index"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// Friendship is one side of a symmetric friendship; an accepted request
// writes both directions.
type Friendship struct {
	UserID    uint      `json:"userId" gorm:"primaryKey;autoIncrement:false"`
	FriendID  uint      `json:"friendId" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `json:"createdAt"`
}

// FriendRequestView is a request with the counterpart resolved for listings.
type FriendRequestView struct {
	FriendRequest
	SenderUser   *UserSummary `json:"senderUser,omitempty"`
	ReceiverUser *UserSummary `json:"receiverUser,omitempty"`
}
