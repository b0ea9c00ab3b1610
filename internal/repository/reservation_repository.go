package repository

import (
	"food_ordering/internal/models"

	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(reservation *models.Reservation) error
	GetByID(id uint) (*models.Reservation, error)
	List() ([]models.Reservation, error)
	ListPending(limit int) ([]models.Reservation, error)
	CountPending() (int64, error)
	GetByEmail(email string) ([]models.Reservation, error)
	Update(reservation *models.Reservation) error
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(reservation *models.Reservation) error {
	return r.db.Create(reservation).Error
}

func (r *reservationRepository) GetByID(id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.First(&reservation, id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// List returns every reservation, newest slot first.
func (r *reservationRepository) List() ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.Order("reservation_date DESC").Order("reservation_time DESC").Find(&reservations).Error
	return reservations, err
}

// ListPending returns the next pending reservations, soonest first.
func (r *reservationRepository) ListPending(limit int) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.Where("status = ?", string(models.ReservationPending)).
		Order("reservation_date ASC").Order("reservation_time ASC").
		Limit(limit).
		Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepository) CountPending() (int64, error) {
	var n int64
	err := r.db.Model(&models.Reservation{}).
		Where("status = ?", string(models.ReservationPending)).
		Count(&n).Error
	return n, err
}

func (r *reservationRepository) GetByEmail(email string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.Where("guest_email = ?", email).Order("reservation_date DESC").Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepository) Update(reservation *models.Reservation) error {
	return r.db.Save(reservation).Error
}
