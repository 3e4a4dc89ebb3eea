package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/fledge-social/fledge/backend/internal/apperrors"
	"github.com/fledge-social/fledge/backend/internal/models"
	"github.com/fledge-social/fledge/backend/internal/services"
	"github.com/fledge-social/fledge/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubPostRepo struct {
	posts map[primitive.ObjectID]*models.Post
	order []primitive.ObjectID
}

func newStubPostRepo(posts ...*models.Post) *stubPostRepo {
	r := &stubPostRepo{posts: make(map[primitive.ObjectID]*models.Post)}
	for _, p := range posts {
		r.posts[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	return r
}

func (r *stubPostRepo) CreatePost(_ context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	r.posts[post.ID] = post
	r.order = append(r.order, post.ID)
	return nil
}

func (r *stubPostRepo) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return post, nil
}

func (r *stubPostRepo) newestFirst(match func(*models.Post) bool) []models.Post {
	out := []models.Post{}
	for _, id := range r.order {
		if p := r.posts[id]; match(p) {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubPostRepo) GetAllPosts(context.Context) ([]models.Post, error) {
	return r.newestFirst(func(*models.Post) bool { return true }), nil
}

func (r *stubPostRepo) GetPostsByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Post, error) {
	return r.newestFirst(func(p *models.Post) bool { return p.UserID == ownerID }), nil
}

func (r *stubPostRepo) GetPostsByOwners(_ context.Context, ownerIDs []primitive.ObjectID) ([]models.Post, error) {
	owners := make(map[primitive.ObjectID]bool)
	for _, id := range ownerIDs {
		owners[id] = true
	}
	return r.newestFirst(func(p *models.Post) bool { return owners[p.UserID] }), nil
}

func (r *stubPostRepo) GetPostsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	wanted := make(map[primitive.ObjectID]bool)
	for _, id := range ids {
		wanted[id] = true
	}
	out := []models.Post{}
	for _, id := range r.order {
		if wanted[id] {
			out = append(out, *r.posts[id])
		}
	}
	return out, nil
}

func (r *stubPostRepo) DeletePost(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.posts[id]; !ok {
		return fmt.Errorf("post %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	delete(r.posts, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *stubPostRepo) AddLike(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}
func (r *stubPostRepo) RemoveLike(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}
func (r *stubPostRepo) AddComment(context.Context, primitive.ObjectID, models.Comment) error {
	return nil
}

// stubAssetStore records uploads and destroys without talking to Cloudinary.
type stubAssetStore struct {
	uploaded  []string
	destroyed []string
}

func (s *stubAssetStore) Upload(_ context.Context, image string) (string, error) {
	s.uploaded = append(s.uploaded, image)
	return "https://assets.example/" + fmt.Sprint(len(s.uploaded)) + ".png", nil
}

func (s *stubAssetStore) Destroy(_ context.Context, assetURL string) error {
	s.destroyed = append(s.destroyed, assetURL)
	return nil
}

func newJSONContext(t *testing.T, method, path, body string, userID primitive.ObjectID) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", &models.JwtCustomClaims{UserID: userID.Hex()})
	return c, rec
}

func newPostHandler(users *stubUserRepo, posts *stubPostRepo, store *stubAssetStore) *PostHandler {
	engagement := services.NewEngagementService(users, posts, &stubNotificationRepo{})
	return NewPostHandler(posts, users, engagement, store)
}

func TestCreatePost(t *testing.T) {
	owner := &models.User{ID: primitive.NewObjectID(), Username: "carol"}
	users := &stubUserRepo{users: map[primitive.ObjectID]*models.User{owner.ID: owner}}

	t.Run("text only", func(t *testing.T) {
		posts := newStubPostRepo()
		h := newPostHandler(users, posts, &stubAssetStore{})

		c, rec := newJSONContext(t, http.MethodPost, "/api/v1/posts/create", `{"text":"hi"}`, owner.ID)
		require.NoError(t, h.CreatePost(c))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, posts.posts, 1)
	})

	t.Run("image is uploaded and URL persisted", func(t *testing.T) {
		posts := newStubPostRepo()
		store := &stubAssetStore{}
		h := newPostHandler(users, posts, store)

		c, rec := newJSONContext(t, http.MethodPost, "/api/v1/posts/create",
			`{"img":"data:image/png;base64,xxxx"}`, owner.ID)
		require.NoError(t, h.CreatePost(c))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, store.uploaded, 1)
		for _, p := range posts.posts {
			require.Equal(t, "https://assets.example/1.png", p.Img)
		}
	})

	t.Run("neither text nor image rejected with no post created", func(t *testing.T) {
		posts := newStubPostRepo()
		h := newPostHandler(users, posts, &stubAssetStore{})

		c, _ := newJSONContext(t, http.MethodPost, "/api/v1/posts/create", `{}`, owner.ID)
		err := h.CreatePost(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		require.Equal(t, http.StatusBadRequest, he.Code)
		require.Empty(t, posts.posts)
	})
}

func decodeFeed(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var feed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
	return feed
}

func TestFeeds(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), Username: "alice", FullName: "Alice A", Password: "hashed", ProfileImg: "http://img/alice.png"}
	bob := &models.User{ID: primitive.NewObjectID(), Username: "bob", FullName: "Bob B", Password: "hashed"}
	carol := &models.User{ID: primitive.NewObjectID(), Username: "carol", Following: []primitive.ObjectID{alice.ID}}
	users := &stubUserRepo{users: map[primitive.ObjectID]*models.User{
		alice.ID: alice, bob.ID: bob, carol.ID: carol,
	}}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldPost := &models.Post{ID: primitive.NewObjectID(), UserID: alice.ID, Text: "first", CreatedAt: base}
	newPost := &models.Post{
		ID: primitive.NewObjectID(), UserID: bob.ID, Text: "second", CreatedAt: base.Add(time.Hour),
		Comments: []models.Comment{{UserID: alice.ID, Text: "nice", CreatedAt: base.Add(2 * time.Hour)}},
	}

	t.Run("global feed empty renders []", func(t *testing.T) {
		h := newPostHandler(users, newStubPostRepo(), &stubAssetStore{})
		c, rec := newJSONContext(t, http.MethodGet, "/api/v1/posts/all", "", carol.ID)
		require.NoError(t, h.GetAllPosts(c))
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("global feed is newest first with authors resolved", func(t *testing.T) {
		h := newPostHandler(users, newStubPostRepo(oldPost, newPost), &stubAssetStore{})
		c, rec := newJSONContext(t, http.MethodGet, "/api/v1/posts/all", "", carol.ID)
		require.NoError(t, h.GetAllPosts(c))
		require.Equal(t, http.StatusOK, rec.Code)

		feed := decodeFeed(t, rec)
		require.Len(t, feed, 2)
		require.Equal(t, "second", feed[0]["text"])
		require.Equal(t, "first", feed[1]["text"])

		author, ok := feed[0]["author"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "bob", author["username"])
		require.Equal(t, "Bob B", author["fullName"])
		require.NotContains(t, author, "password")

		comments, ok := feed[0]["comments"].([]any)
		require.True(t, ok)
		require.Len(t, comments, 1)
		comment := comments[0].(map[string]any)
		require.Equal(t, "nice", comment["text"])
		commentAuthor, ok := comment["author"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "alice", commentAuthor["username"])
		require.Equal(t, "http://img/alice.png", commentAuthor["profileImg"])
		require.NotContains(t, commentAuthor, "password")
	})

	t.Run("following feed only includes followed owners", func(t *testing.T) {
		h := newPostHandler(users, newStubPostRepo(oldPost, newPost), &stubAssetStore{})
		c, rec := newJSONContext(t, http.MethodGet, "/api/v1/posts/following", "", carol.ID)
		require.NoError(t, h.GetFollowingPosts(c))
		require.Equal(t, http.StatusOK, rec.Code)

		feed := decodeFeed(t, rec)
		require.Len(t, feed, 1)
		require.Equal(t, "first", feed[0]["text"])
		author := feed[0]["author"].(map[string]any)
		require.Equal(t, "alice", author["username"])
	})

	t.Run("liked feed lists the user's liked posts", func(t *testing.T) {
		liker := &models.User{ID: primitive.NewObjectID(), Username: "dave", LikedPosts: []primitive.ObjectID{newPost.ID}}
		users.users[liker.ID] = liker
		defer delete(users.users, liker.ID)

		h := newPostHandler(users, newStubPostRepo(oldPost, newPost), &stubAssetStore{})
		c, rec := newJSONContext(t, http.MethodGet, "/api/v1/posts/likes/"+liker.ID.Hex(), "", carol.ID)
		c.SetParamNames("id")
		c.SetParamValues(liker.ID.Hex())
		require.NoError(t, h.GetLikedPosts(c))
		require.Equal(t, http.StatusOK, rec.Code)

		feed := decodeFeed(t, rec)
		require.Len(t, feed, 1)
		require.Equal(t, "second", feed[0]["text"])
	})

	t.Run("liked feed for unknown user", func(t *testing.T) {
		h := newPostHandler(users, newStubPostRepo(oldPost), &stubAssetStore{})
		unknown := primitive.NewObjectID()
		c, _ := newJSONContext(t, http.MethodGet, "/api/v1/posts/likes/"+unknown.Hex(), "", carol.ID)
		c.SetParamNames("id")
		c.SetParamValues(unknown.Hex())

		err := h.GetLikedPosts(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		require.Equal(t, http.StatusNotFound, he.Code)
	})

	t.Run("user feed by username", func(t *testing.T) {
		h := newPostHandler(users, newStubPostRepo(oldPost, newPost), &stubAssetStore{})
		c, rec := newJSONContext(t, http.MethodGet, "/api/v1/posts/user/alice", "", carol.ID)
		c.SetParamNames("username")
		c.SetParamValues("alice")
		require.NoError(t, h.GetUserPosts(c))
		require.Equal(t, http.StatusOK, rec.Code)

		feed := decodeFeed(t, rec)
		require.Len(t, feed, 1)
		require.Equal(t, "first", feed[0]["text"])
	})

	t.Run("user feed for unknown username", func(t *testing.T) {
		h := newPostHandler(users, newStubPostRepo(oldPost), &stubAssetStore{})
		c, _ := newJSONContext(t, http.MethodGet, "/api/v1/posts/user/nobody", "", carol.ID)
		c.SetParamNames("username")
		c.SetParamValues("nobody")

		err := h.GetUserPosts(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		require.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestDeletePost(t *testing.T) {
	owner := &models.User{ID: primitive.NewObjectID(), Username: "carol"}
	users := &stubUserRepo{users: map[primitive.ObjectID]*models.User{owner.ID: owner}}

	t.Run("owner delete cascades asset removal", func(t *testing.T) {
		post := &models.Post{ID: primitive.NewObjectID(), UserID: owner.ID, Img: "https://assets.example/1.png"}
		posts := newStubPostRepo(post)
		store := &stubAssetStore{}
		h := newPostHandler(users, posts, store)

		c, rec := newJSONContext(t, http.MethodDelete, "/api/v1/posts/"+post.ID.Hex(), "", owner.ID)
		c.SetParamNames("id")
		c.SetParamValues(post.ID.Hex())
		require.NoError(t, h.DeletePost(c))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, posts.posts)
		require.Equal(t, []string{"https://assets.example/1.png"}, store.destroyed)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		post := &models.Post{ID: primitive.NewObjectID(), UserID: owner.ID}
		posts := newStubPostRepo(post)
		h := newPostHandler(users, posts, &stubAssetStore{})

		c, _ := newJSONContext(t, http.MethodDelete, "/api/v1/posts/"+post.ID.Hex(), "", primitive.NewObjectID())
		c.SetParamNames("id")
		c.SetParamValues(post.ID.Hex())

		err := h.DeletePost(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		require.Equal(t, http.StatusForbidden, he.Code)
		require.Len(t, posts.posts, 1)
	})

	t.Run("missing post", func(t *testing.T) {
		h := newPostHandler(users, newStubPostRepo(), &stubAssetStore{})

		c, _ := newJSONContext(t, http.MethodDelete, "/api/v1/posts/x", "", owner.ID)
		c.SetParamNames("id")
		c.SetParamValues(primitive.NewObjectID().Hex())

		err := h.DeletePost(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		require.Equal(t, http.StatusNotFound, he.Code)
	})
}
