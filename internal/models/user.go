package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password       string    `json:"-"` // bcrypt hash
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profilePicture"`
	Role           Role      `json:"role" gorm:"size:10;default:user;not null"`
	FirebaseUID    *string   `json:"-" gorm:"uniqueIndex"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// Derived from the friendships and group_members tables.
	Friends []uint `json:"friends" gorm:"-"`
	Groups  []uint `json:"groups" gorm:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Summary is the trimmed view embedded in other payloads.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
	}
}

type UserSummary struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

// UserSearchResult carries the relation snapshot between the searching user
// and a candidate.
type UserSearchResult struct {
	ID                      uint   `json:"id"`
	Username                string `json:"username"`
	Email                   string `json:"email"`
	Bio                     string `json:"bio"`
	ProfilePicture          string `json:"profilePicture"`
	IsFriend                bool   `json:"isFriend"`
	OutgoingFriendRequestID *uint  `json:"outgoingFriendRequestId"`
	IncomingFriendRequestID *uint  `json:"incomingFriendRequestId"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" form:"username" validate:"omitempty,min=3,max=50,alphanum"`
	// Bio is left unchanged when absent from the request.
	Bio *string `json:"bio" form:"bio" validate:"omitempty,max=500"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Role   Role   `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
