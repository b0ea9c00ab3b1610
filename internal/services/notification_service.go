package services

import (
	"food_ordering/internal/models"
	"food_ordering/internal/repository"
)

type NotificationService interface {
	List(limit int, unreadOnly bool) ([]models.Notification, error)
	CountUnread() (int64, error)
	MarkRead(id uint) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(limit int, unreadOnly bool) ([]models.Notification, error) {
	return s.repo.List(limit, unreadOnly)
}

func (s *notificationService) CountUnread() (int64, error) {
	return s.repo.CountUnread()
}

func (s *notificationService) MarkRead(id uint) error {
	return notFound(s.repo.MarkRead(id))
}
