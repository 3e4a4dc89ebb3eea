package handlers

import (
	"net/http"

	"github.com/fledge-social/fledge/backend/internal/models"
	"github.com/fledge-social/fledge/backend/internal/repositories"
	"github.com/fledge-social/fledge/backend/internal/services"
	"github.com/fledge-social/fledge/backend/pkg/assets"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles user profile and relationship HTTP requests
type UserHandler struct {
	userRepository    repositories.UserRepository
	engagementService *services.EngagementService
	assetStore        assets.Store
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, engagement *services.EngagementService, assetStore assets.Store) *UserHandler {
	return &UserHandler{
		userRepository:    userRepo,
		engagementService: engagement,
		assetStore:        assetStore,
	}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/profile/:username", h.GetProfile)
	g.GET("/users/suggested", h.GetSuggestedUsers)
	g.POST("/users/follow/:id", h.FollowUser)
	g.POST("/users/update", h.UpdateUser)
}

// GetProfile returns the public profile for a username
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetSuggestedUsers returns up to 4 random users the caller does not follow yet
func (h *UserHandler) GetSuggestedUsers(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	current, err := h.userRepository.GetUserByID(c.Request().Context(), currentUserID)
	if err != nil {
		return toHTTPError(err)
	}

	candidates, err := h.userRepository.SampleUsers(c.Request().Context(), currentUserID, 10)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	suggested := []models.User{}
	for _, candidate := range candidates {
		if current.IsFollowing(candidate.ID) {
			continue
		}
		suggested = append(suggested, candidate)
		if len(suggested) == 4 {
			break
		}
	}

	return c.JSON(http.StatusOK, suggested)
}

// FollowUser toggles following the user given by id
func (h *UserHandler) FollowUser(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	following, err := h.engagementService.FollowUser(c.Request().Context(), currentUserID, targetID)
	if err != nil {
		return toHTTPError(err)
	}

	if following {
		return c.JSON(http.StatusOK, echo.Map{"message": "User followed successfully"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User unfollowed successfully"})
}

// UpdateUser updates the caller's profile. Password change requires both the
// current and new password; profile and cover images go through the asset
// store, destroying the previously stored asset first.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, currentUserID)
	if err != nil {
		return toHTTPError(err)
	}

	if (req.NewPassword == "") != (req.CurrentPassword == "") {
		return echo.NewHTTPError(http.StatusBadRequest, "Please provide both current password and new password")
	}
	if req.CurrentPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Current password is incorrect")
		}
		if len(req.NewPassword) < 6 {
			return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 6 characters long")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
		}
		user.Password = string(hashed)
	}

	if req.ProfileImg != "" {
		if user.ProfileImg != "" {
			if err := h.assetStore.Destroy(ctx, user.ProfileImg); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
		}
		url, err := h.assetStore.Upload(ctx, req.ProfileImg)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		user.ProfileImg = url
	}

	if req.CoverImg != "" {
		if user.CoverImg != "" {
			if err := h.assetStore.Destroy(ctx, user.CoverImg); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
		}
		url, err := h.assetStore.Upload(ctx, req.CoverImg)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		user.CoverImg = url
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Link != "" {
		user.Link = req.Link
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, user)
}
