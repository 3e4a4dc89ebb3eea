package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/fledge-social/fledge/backend/internal/apperrors"
	"github.com/fledge-social/fledge/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	SampleUsers(ctx context.Context, exclude primitive.ObjectID, size int) ([]models.User, error)
	AddFollowEdge(ctx context.Context, followerID, targetID primitive.ObjectID) error
	RemoveFollowEdge(ctx context.Context, followerID, targetID primitive.ObjectID) error
	AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error
	RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new user in MongoDB
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.LikedPosts == nil {
		user.LikedPosts = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// GetUserByID retrieves a user by ObjectID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByUsername retrieves a user by username
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs retrieves users by a set of ObjectIDs
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var users []models.User
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser replaces the mutable profile fields of a user
func (r *MongoUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"username":   user.Username,
			"fullName":   user.FullName,
			"email":      user.Email,
			"password":   user.Password,
			"profileImg": user.ProfileImg,
			"coverImg":   user.CoverImg,
			"bio":        user.Bio,
			"link":       user.Link,
			"updatedAt":  user.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", user.ID.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// SampleUsers returns up to size random users excluding the given user
func (r *MongoUserRepository) SampleUsers(ctx context.Context, exclude primitive.ObjectID, size int) ([]models.User, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$ne": exclude}}}},
		{{Key: "$sample", Value: bson.M{"size": size}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AddFollowEdge records follower -> target in both relationship arrays.
// Two independent single-document updates; there is no cross-document
// transaction, so a failure between them leaves the graph asymmetric and
// is surfaced to the caller.
func (r *MongoUserRepository) AddFollowEdge(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": targetID},
		bson.M{"$addToSet": bson.M{"followers": followerID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", targetID.Hex(), apperrors.ErrNotFound)
	}

	res, err = r.collection.UpdateOne(ctx, bson.M{"_id": followerID},
		bson.M{"$addToSet": bson.M{"following": targetID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", followerID.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// RemoveFollowEdge removes follower -> target from both relationship arrays
func (r *MongoUserRepository) RemoveFollowEdge(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": targetID},
		bson.M{"$pull": bson.M{"followers": followerID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", targetID.Hex(), apperrors.ErrNotFound)
	}

	res, err = r.collection.UpdateOne(ctx, bson.M{"_id": followerID},
		bson.M{"$pull": bson.M{"following": targetID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", followerID.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// AddLikedPost appends a post to the user's liked-posts reverse index
func (r *MongoUserRepository) AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"likedPosts": postID}})
	return err
}

// RemoveLikedPost removes a post from the user's liked-posts reverse index
func (r *MongoUserRepository) RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"likedPosts": postID}})
	return err
}
