package handlers

import (
	"net/http"
	"strings"

	"github.com/fledge-social/fledge/backend/internal/models"
	"github.com/fledge-social/fledge/backend/internal/repositories"
	"github.com/fledge-social/fledge/backend/internal/services"
	"github.com/fledge-social/fledge/backend/pkg/assets"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostHandler handles post and feed HTTP requests
type PostHandler struct {
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	engagementService *services.EngagementService
	assetStore        assets.Store
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	engagement *services.EngagementService,
	assetStore assets.Store,
) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		userRepository:    userRepo,
		engagementService: engagement,
		assetStore:        assetStore,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts/all", h.GetAllPosts)
	g.GET("/posts/following", h.GetFollowingPosts)
	g.GET("/posts/likes/:id", h.GetLikedPosts)
	g.GET("/posts/user/:username", h.GetUserPosts)
	g.POST("/posts/create", h.CreatePost)
	g.POST("/posts/like/:id", h.LikePost)
	g.POST("/posts/comment/:id", h.CommentOnPost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a post with text, an image, or both
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if strings.TrimSpace(req.Text) == "" && req.Img == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Post must have text or image")
	}

	ctx := c.Request().Context()
	if _, err := h.userRepository.GetUserByID(ctx, currentUserID); err != nil {
		return toHTTPError(err)
	}

	img := req.Img
	if img != "" {
		url, err := h.assetStore.Upload(ctx, img)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		img = url
	}

	post := &models.Post{
		UserID: currentUserID,
		Text:   req.Text,
		Img:    img,
	}
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, post)
}

// DeletePost deletes the caller's own post, cascading removal of any
// externally stored image asset.
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return toHTTPError(err)
	}
	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if post.Img != "" {
		if err := h.assetStore.Destroy(ctx, post.Img); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	if err := h.postRepository.DeletePost(ctx, postID); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}

// LikePost toggles the caller's like on a post
func (h *PostHandler) LikePost(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	liked, err := h.engagementService.ToggleLike(c.Request().Context(), currentUserID, postID)
	if err != nil {
		return toHTTPError(err)
	}

	if liked {
		return c.JSON(http.StatusOK, echo.Map{"message": "Post liked successfully"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post unliked successfully"})
}

// CommentOnPost appends a comment to a post and returns the updated post
func (h *PostHandler) CommentOnPost(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	post, err := h.engagementService.AddComment(c.Request().Context(), currentUserID, postID, req.Text)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, post)
}

// GetAllPosts returns the global feed, newest first
func (h *PostHandler) GetAllPosts(c echo.Context) error {
	posts, err := h.postRepository.GetAllPosts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.respondEnriched(c, posts)
}

// GetFollowingPosts returns posts by users the caller follows, newest first
func (h *PostHandler) GetFollowingPosts(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, currentUserID)
	if err != nil {
		return toHTTPError(err)
	}

	posts, err := h.postRepository.GetPostsByOwners(ctx, user.Following)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.respondEnriched(c, posts)
}

// GetLikedPosts returns the posts liked by the user given by id
func (h *PostHandler) GetLikedPosts(c echo.Context) error {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return toHTTPError(err)
	}

	posts, err := h.postRepository.GetPostsByIDs(ctx, user.LikedPosts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.respondEnriched(c, posts)
}

// GetUserPosts returns the posts owned by the user given by username, newest first
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return toHTTPError(err)
	}

	posts, err := h.postRepository.GetPostsByOwner(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.respondEnriched(c, posts)
}

// respondEnriched resolves post owners and comment authors to their public
// profiles and writes the feed response. Empty feeds serialize as [].
func (h *PostHandler) respondEnriched(c echo.Context, posts []models.Post) error {
	enriched, err := h.enrichPosts(c, posts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, enriched)
}

func (h *PostHandler) enrichPosts(c echo.Context, posts []models.Post) ([]models.EnrichedPost, error) {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, p := range posts {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ids = append(ids, p.UserID)
		}
		for _, cm := range p.Comments {
			if !seen[cm.UserID] {
				seen[cm.UserID] = true
				ids = append(ids, cm.UserID)
			}
		}
	}

	userMap := make(map[primitive.ObjectID]models.UserCompact)
	if len(ids) > 0 {
		users, err := h.userRepository.GetUsersByIDs(c.Request().Context(), ids)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			userMap[u.ID] = u.ToCompact()
		}
	}

	enriched := make([]models.EnrichedPost, len(posts))
	for i, p := range posts {
		comments := make([]models.EnrichedComment, len(p.Comments))
		for j, cm := range p.Comments {
			comments[j] = models.EnrichedComment{Comment: cm, Author: userMap[cm.UserID]}
		}
		enriched[i] = models.EnrichedPost{
			Post:     p,
			Author:   userMap[p.UserID],
			Comments: comments,
		}
	}
	return enriched, nil
}
