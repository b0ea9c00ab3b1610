package repository

import (
	"food_ordering/internal/models"

	"gorm.io/gorm"
)

// ProductSales is the ordered quantity of one product across all orders.
type ProductSales struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
}

type OrderItemRepository interface {
	GetByOrderID(orderID uint) ([]models.OrderItem, error)
	TopProducts(limit int) ([]ProductSales, error)
}

type orderItemRepository struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) GetByOrderID(orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.Where("order_id = ?", orderID).Order("id").Find(&items).Error
	return items, err
}

// TopProducts ranks products by quantity ordered, cancelled orders excluded.
func (r *orderItemRepository) TopProducts(limit int) ([]ProductSales, error) {
	var out []ProductSales
	err := r.db.Model(&models.OrderItem{}).
		Select("order_items.product_id, order_items.product_name, SUM(order_items.quantity) AS quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ?", string(models.OrderCancelled)).
		Group("order_items.product_id, order_items.product_name").
		Order("quantity DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
