package repositories

import (
	"errors"
	"fmt"

	"github.com/fledge-social/fledge/backend/internal/apperrors"
	"github.com/fledge-social/fledge/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	GetByRecipient(toID string) ([]models.Notification, error)
	GetByID(id uint) (*models.Notification, error)
	MarkAllRead(toID string) error
	Delete(id uint) error
	DeleteAllForRecipient(toID string) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a NotificationRepository backed by PostgreSQL
func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// GetByRecipient returns all notifications addressed to toID in creation
// order ascending.
func (r *postgresNotificationRepository) GetByRecipient(toID string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.db.Where("to_id = ?", toID).Order("id ASC").Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) GetByID(id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("notification %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &notification, nil
}

func (r *postgresNotificationRepository) MarkAllRead(toID string) error {
	return r.db.Model(&models.Notification{}).Where("to_id = ? AND read = false", toID).Update("read", true).Error
}

func (r *postgresNotificationRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Notification{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *postgresNotificationRepository) DeleteAllForRecipient(toID string) error {
	return r.db.Where("to_id = ?", toID).Delete(&models.Notification{}).Error
}
