package models

import "time"

type NotificationType string

const (
	NotifyFriendRequest     NotificationType = "friend_request"
	NotifyFriendAccepted    NotificationType = "friend_accepted"
	NotifyGroupJoinRequest  NotificationType = "group_join_request"
	NotifyGroupJoinAccepted NotificationType = "group_join_accepted"
	NotifyGroupMemberAdded  NotificationType = "group_member_added"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Type        NotificationType `json:"type" gorm:"size:30;index"`
	ActorID     uint             `json:"actor" gorm:"index"`
	RecipientID uint             `json:"recipient" gorm:"index"`
	TargetID    uint             `json:"targetId"`
	TargetType  string           `json:"targetType" gorm:"size:20"` // friend_request, group
	Message     string           `json:"message"`
	IsRead      bool             `json:"read" gorm:"default:false;index"`
	CreatedAt   time.Time        `json:"createdAt" gorm:"index"`
}
