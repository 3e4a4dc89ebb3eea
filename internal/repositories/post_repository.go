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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetPostsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Post, error)
	GetPostsByOwners(ctx context.Context, ownerIDs []primitive.ObjectID) ([]models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error
	AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ObjectID
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("post %s: %w", id.Hex(), apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &post, nil
}

// GetAllPosts retrieves all posts, newest first
func (r *MongoPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// GetPostsByOwner retrieves posts by a single owner, newest first
func (r *MongoPostRepository) GetPostsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Post, error) {
	return r.find(ctx, bson.M{"user": ownerID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// GetPostsByOwners retrieves posts whose owner is in the given set, newest first
func (r *MongoPostRepository) GetPostsByOwners(ctx context.Context, ownerIDs []primitive.ObjectID) ([]models.Post, error) {
	return r.find(ctx, bson.M{"user": bson.M{"$in": ownerIDs}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// GetPostsByIDs retrieves posts by a set of ObjectIDs in store order
func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Post, error) {
	posts := []models.Post{}
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost deletes a post by ObjectID
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// AddLike appends a user to the post's likes array, keeping like order
// and rejecting duplicates via $addToSet.
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{"$addToSet": bson.M{"likes": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post %s: %w", postID.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// RemoveLike removes a user from the post's likes array
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"likes": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post %s: %w", postID.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// AddComment appends a comment to the post's comment sequence
func (r *MongoPostRepository) AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": comment}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post %s: %w", postID.Hex(), apperrors.ErrNotFound)
	}
	return nil
}
