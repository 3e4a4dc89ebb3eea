package handlers

import (
	"net/http"
	"strconv"

	"github.com/fledge-social/fledge/backend/internal/models"
	"github.com/fledge-social/fledge/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.DELETE("/notifications", h.DeleteNotifications)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// GetNotifications returns every notification addressed to the caller in
// creation order, each enriched with the sender's public fields. As a side
// effect every listed notification is marked read.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	notifications, err := h.notificationRepository.GetByRecipient(currentUserID.Hex())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched := h.enrichNotifications(c, notifications)

	if err := h.notificationRepository.MarkAllRead(currentUserID.Hex()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, enriched)
}

func (h *NotificationHandler) enrichNotifications(c echo.Context, notifications []models.Notification) []models.EnrichedNotification {
	enriched := make([]models.EnrichedNotification, len(notifications))
	senderCache := make(map[string]models.UserCompact)

	for i, n := range notifications {
		enriched[i] = models.EnrichedNotification{Notification: n}
		if sender, ok := senderCache[n.FromID]; ok {
			s := sender
			enriched[i].From = &s
			continue
		}
		senderID, err := primitive.ObjectIDFromHex(n.FromID)
		if err != nil {
			continue
		}
		user, err := h.userRepository.GetUserByID(c.Request().Context(), senderID)
		if err != nil {
			continue
		}
		compact := user.ToCompact()
		senderCache[n.FromID] = compact
		enriched[i].From = &compact
	}
	return enriched
}

// DeleteNotification deletes a single notification owned by the caller
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	notification, err := h.notificationRepository.GetByID(uint(id))
	if err != nil {
		return toHTTPError(err)
	}
	if notification.ToID != currentUserID.Hex() {
		return echo.NewHTTPError(http.StatusForbidden, "You are not allowed to delete this notification")
	}

	if err := h.notificationRepository.Delete(uint(id)); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Notification deleted successfully"})
}

// DeleteNotifications deletes every notification addressed to the caller.
// Succeeds as a no-op when there are none.
func (h *NotificationHandler) DeleteNotifications(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	if err := h.notificationRepository.DeleteAllForRecipient(currentUserID.Hex()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Notifications deleted successfully"})
}
