package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account stored in MongoDB. The followers and
// following arrays are maintained as mirror images of each other: if A appears
// in B's followers, B appears in A's following. LikedPosts is the reverse index
// of Post.Likes and is kept in sync with it on every like toggle.
type User struct {
	ID         primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	Username   string               `json:"username" bson:"username"`
	FullName   string               `json:"fullName" bson:"fullName"`
	Password   string               `json:"-" bson:"password"` // bcrypt hash, never serialized
	Email      string               `json:"email" bson:"email"`
	Followers  []primitive.ObjectID `json:"followers" bson:"followers"`
	Following  []primitive.ObjectID `json:"following" bson:"following"`
	LikedPosts []primitive.ObjectID `json:"likedPosts" bson:"likedPosts"`
	ProfileImg string               `json:"profileImg" bson:"profileImg"`
	CoverImg   string               `json:"coverImg" bson:"coverImg"`
	Bio        string               `json:"bio" bson:"bio"`
	Link       string               `json:"link" bson:"link"`
	CreatedAt  time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// IsFollowing reports whether id is in the user's following set.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}

// UserCompact is the public projection of a user embedded in enriched
// responses (feed authors, notification senders).
type UserCompact struct {
	ID         primitive.ObjectID `json:"_id"`
	Username   string             `json:"username"`
	FullName   string             `json:"fullName"`
	ProfileImg string             `json:"profileImg"`
}

// ToCompact strips a user down to its public display fields.
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		ProfileImg: u.ProfileImg,
	}
}

// SignupRequest defines the request body for registering a new user
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=2,max=30"`
	FullName string `json:"fullName" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest defines the request body for authenticating a user
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest defines the request body for updating a user profile.
// All fields are optional; password change requires both current and new.
type UpdateUserRequest struct {
	FullName        string `json:"fullName,omitempty" validate:"omitempty,min=2,max=50"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	Username        string `json:"username,omitempty" validate:"omitempty,min=2,max=30"`
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
	Bio             string `json:"bio,omitempty" validate:"omitempty,max=300"`
	Link            string `json:"link,omitempty" validate:"omitempty,max=200"`
	ProfileImg      string `json:"profileImg,omitempty"`
	CoverImg        string `json:"coverImg,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"` // MongoDB ObjectID hex
	jwt.RegisteredClaims
}
