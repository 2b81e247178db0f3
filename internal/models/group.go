package models

import "time"

type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

type Group struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;not null;index"`
	Description string    `json:"description"`
	AdminID     uint      `json:"admin" gorm:"not null;index"`
	CoverImage  string    `json:"coverImage"`
	Privacy     Privacy   `json:"privacy" gorm:"size:10;not null;default:public"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Derived from group_members and the post store.
	Members   []uint `json:"members" gorm:"-"`
	PostCount int64  `json:"postCount" gorm:"-"`
}

func (g *Group) IsPrivate() bool {
	return g.Privacy == PrivacyPrivate
}

func (g *Group) HasMember(userID uint) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// GroupMember links a user to a group. The same row answers both "members
// of the group" and "groups of the user".
type GroupMember struct {
	GroupID  uint      `json:"groupId" gorm:"primaryKey;autoIncrement:false"`
	UserID   uint      `json:"userId" gorm:"primaryKey;autoIncrement:false;index"`
	JoinedAt time.Time `json:"joinedAt" gorm:"autoCreateTime"`
}

// GroupJoinRequest gates membership of a private group. ReceiverID is the
// group admin at creation time and is not updated on admin transfer.
type GroupJoinRequest struct {
	ID         uint          `json:"id" gorm:"primaryKey"`
	GroupID    uint          `json:"group" gorm:"not null;index;uniqueIndex:idx_group_join_requests_pending,where:status = 'pending'"`
	UserID     uint          `json:"user" gorm:"not null;index;uniqueIndex:idx_group_join_requests_pending,where:status = 'pending'"`
	ReceiverID uint          `json:"receiver" gorm:"not null;index"`
	Status     RequestStatus `json:"status" gorm:"size:20;not null;default:pending;index"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`

	User *UserSummary `json:"userInfo,omitempty" gorm:"-"`
}

type CreateGroupRequest struct {
	Name        string  `json:"name" form:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description" form:"description" validate:"max=1000"`
	Privacy     Privacy `json:"privacy" form:"privacy" validate:"omitempty,oneof=public private"`
}

type UpdateGroupRequest struct {
	Name        string  `json:"name" form:"name" validate:"omitempty,min=3,max=100"`
	Description string  `json:"description" form:"description" validate:"max=1000"`
	Privacy     Privacy `json:"privacy" form:"privacy" validate:"omitempty,oneof=public private"`
}

type GroupMemberRequest struct {
	UserID uint `json:"userId" validate:"required"`
}

type GroupInviteRequest struct {
	Identifier string `json:"identifier" validate:"required"` // username or email
}

type GroupFilter struct {
	MemberID uint // only groups this user belongs to when set
	Query    string
}
