package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a social media post stored in MongoDB. The owner is
// immutable after creation. Likes holds liking users in like order with no
// duplicates; Comments is append-only and never reordered.
type Post struct {
	ID        primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID   `json:"user" bson:"user"`
	Text      string               `json:"text,omitempty" bson:"text,omitempty"`
	Img       string               `json:"img,omitempty" bson:"img,omitempty"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments  []Comment            `json:"comments" bson:"comments"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// IsLikedBy reports whether userID is in the post's likes set.
func (p *Post) IsLikedBy(userID primitive.ObjectID) bool {
	for _, l := range p.Likes {
		if l == userID {
			return true
		}
	}
	return false
}

// Comment is embedded in a post: author reference plus non-empty text.
type Comment struct {
	UserID    primitive.ObjectID `json:"user" bson:"user"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// CreatePostRequest defines the request body for creating a new post.
// At least one of Text and Img must be present; this cross-field rule is
// enforced by the handler, not the tag validator.
type CreatePostRequest struct {
	Text string `json:"text,omitempty" validate:"omitempty,max=500"`
	Img  string `json:"img,omitempty"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

// EnrichedComment is a comment with the author resolved to public fields.
type EnrichedComment struct {
	Comment
	Author UserCompact `json:"author"`
}

// EnrichedPost is a post with owner and comment author identities resolved.
// The outer Comments field shadows the embedded one in the JSON output.
type EnrichedPost struct {
	Post
	Author   UserCompact       `json:"author"`
	Comments []EnrichedComment `json:"comments"`
}
