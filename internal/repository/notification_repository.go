package repository

import (
	"food_ordering/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(notification *models.Notification) error
	List(limit int, unreadOnly bool) ([]models.Notification, error)
	CountUnread() (int64, error)
	MarkRead(id uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *notificationRepository) List(limit int, unreadOnly bool) ([]models.Notification, error) {
	q := r.db.Order("created_at DESC")
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Notification
	err := q.Find(&out).Error
	return out, err
}

func (r *notificationRepository) CountUnread() (int64, error) {
	var n int64
	err := r.db.Model(&models.Notification{}).Where("is_read = ?", false).Count(&n).Error
	return n, err
}

func (r *notificationRepository) MarkRead(id uint) error {
	res := r.db.Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
