// Package services holds the engagement orchestration: follow, like and
// comment actions that mutate relationships across the user, post and
// notification stores.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fledge-social/fledge/backend/internal/apperrors"
	"github.com/fledge-social/fledge/backend/internal/models"
	"github.com/fledge-social/fledge/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EngagementService orchestrates cross-store mutations for follow, like and
// comment actions. Each multi-step mutation is a sequence of independent
// per-document updates with no transaction or compensating rollback; a
// failed intermediate step surfaces as an error to the caller.
type EngagementService struct {
	userRepository         repositories.UserRepository
	postRepository         repositories.PostRepository
	notificationRepository repositories.NotificationRepository
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	notifRepo repositories.NotificationRepository,
) *EngagementService {
	return &EngagementService{
		userRepository:         userRepo,
		postRepository:         postRepo,
		notificationRepository: notifRepo,
	}
}

// FollowUser toggles the follow edge from actorID to targetID. Following
// creates exactly one follow notification; unfollowing creates none.
// It returns the resulting state: true when the actor now follows the target.
func (s *EngagementService) FollowUser(ctx context.Context, actorID, targetID primitive.ObjectID) (bool, error) {
	if actorID == targetID {
		return false, fmt.Errorf("cannot follow yourself: %w", apperrors.ErrSelfReference)
	}

	actor, err := s.userRepository.GetUserByID(ctx, actorID)
	if err != nil {
		return false, err
	}
	if _, err := s.userRepository.GetUserByID(ctx, targetID); err != nil {
		return false, err
	}

	if actor.IsFollowing(targetID) {
		if err := s.userRepository.RemoveFollowEdge(ctx, actorID, targetID); err != nil {
			return true, err
		}
		return false, nil
	}

	if err := s.userRepository.AddFollowEdge(ctx, actorID, targetID); err != nil {
		return false, err
	}

	notification := &models.Notification{
		FromID: actorID.Hex(),
		ToID:   targetID.Hex(),
		Type:   models.NotificationTypeFollow,
	}
	if err := s.notificationRepository.CreateNotification(notification); err != nil {
		return true, err
	}
	return true, nil
}

// ToggleLike toggles actorID's like on the given post, keeping the post's
// likes array and the actor's likedPosts reverse index pairwise consistent.
// Liking notifies the post owner, including the owner liking their own post;
// unliking never retracts an earlier notification.
func (s *EngagementService) ToggleLike(ctx context.Context, actorID, postID primitive.ObjectID) (bool, error) {
	post, err := s.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return false, err
	}

	if post.IsLikedBy(actorID) {
		if err := s.postRepository.RemoveLike(ctx, postID, actorID); err != nil {
			return true, err
		}
		if err := s.userRepository.RemoveLikedPost(ctx, actorID, postID); err != nil {
			return true, err
		}
		return false, nil
	}

	if err := s.postRepository.AddLike(ctx, postID, actorID); err != nil {
		return false, err
	}
	if err := s.userRepository.AddLikedPost(ctx, actorID, postID); err != nil {
		return false, err
	}

	notification := &models.Notification{
		FromID: actorID.Hex(),
		ToID:   post.UserID.Hex(),
		Type:   models.NotificationTypeLike,
	}
	if err := s.notificationRepository.CreateNotification(notification); err != nil {
		return true, err
	}
	return true, nil
}

// AddComment appends a comment to the post's comment sequence and returns
// the updated post. Comments never emit notifications.
func (s *EngagementService) AddComment(ctx context.Context, actorID, postID primitive.ObjectID, text string) (*models.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("comment text is required: %w", apperrors.ErrValidation)
	}

	if _, err := s.postRepository.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		UserID:    actorID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.postRepository.AddComment(ctx, postID, comment); err != nil {
		return nil, err
	}

	return s.postRepository.GetPostByID(ctx, postID)
}
