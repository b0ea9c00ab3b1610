package repository

import (
	"strconv"
	"strings"
	"time"

	"food_ordering/internal/models"

	"gorm.io/gorm"
)

// OrderFilter narrows an admin order search. Zero values match everything.
type OrderFilter struct {
	Status string
	// Query matches the order number exactly or the customer's name, email
	// or phone as a case-insensitive substring.
	Query string
	Limit int
}

type OrderRepository interface {
	// CreateWithItems stores the order and its items in one transaction.
	CreateWithItems(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByCustomerID(customerID uint) ([]models.Order, error)
	Search(filter OrderFilter) ([]models.Order, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
	CountSince(t time.Time) (int64, error)
	Recent(limit int) ([]models.Order, error)
	UpdateStatus(id uint, status string) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateWithItems(order *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		items := order.Items
		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		order.Items = items
		return nil
	})
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByCustomerID(customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("customer_id = ?", customerID).
		Order("order_date DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Search(filter OrderFilter) ([]models.Order, error) {
	q := r.db.Model(&models.Order{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		cond := r.db.Where("LOWER(customer_name) LIKE ?", like).
			Or("LOWER(customer_email) LIKE ?", like).
			Or("customer_phone LIKE ?", like)
		if id, err := strconv.ParseUint(strings.TrimPrefix(term, "#"), 10, 64); err == nil {
			cond = cond.Or("id = ?", id)
		}
		q = q.Where(cond)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var orders []models.Order
	err := q.Order("order_date DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Order{}).Count(&n).Error
	return n, err
}

func (r *orderRepository) CountByStatus(status string) (int64, error) {
	var n int64
	err := r.db.Model(&models.Order{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *orderRepository) CountSince(t time.Time) (int64, error) {
	var n int64
	err := r.db.Model(&models.Order{}).Where("order_date >= ?", t).Count(&n).Error
	return n, err
}

func (r *orderRepository) Recent(limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Order("order_date DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) UpdateStatus(id uint, status string) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
