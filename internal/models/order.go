package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID                  uint            `json:"id" gorm:"primaryKey"`
	CustomerID          *uint           `json:"customer_id,omitempty" gorm:"index"`
	CustomerName        string          `json:"customer_name" gorm:"not null;size:100"`
	CustomerEmail       string          `json:"customer_email" gorm:"size:120"`
	CustomerPhone       string          `json:"customer_phone" gorm:"size:20"`
	Address             string          `json:"address,omitempty" gorm:"type:text"`
	OrderType           string          `json:"order_type" gorm:"not null;size:50"`
	PaymentMethod       string          `json:"payment_method" gorm:"not null;size:50"`
	OrderDate           time.Time       `json:"order_date" gorm:"not null;index"`
	Subtotal            decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	TaxAmount           decimal.Decimal `json:"tax_amount" gorm:"type:decimal(10,2);not null"`
	DeliveryFee         decimal.Decimal `json:"delivery_fee" gorm:"type:decimal(10,2);not null"`
	TotalAmount         decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Status              string          `json:"status" gorm:"not null;size:50;default:'pending';index"`
	SpecialInstructions string          `json:"special_instructions,omitempty" gorm:"type:text"`
	PlacedOutsideHours  bool            `json:"placed_outside_hours"`
	Items               []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderPreparing      OrderStatus = "preparing"
	OrderReady          OrderStatus = "ready"
	OrderOutForDelivery OrderStatus = "out-for-delivery"
	OrderCompleted      OrderStatus = "completed"
	OrderCancelled      OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{
	OrderPending, OrderPreparing, OrderReady, OrderOutForDelivery, OrderCompleted, OrderCancelled,
}

// OrderStatuses lists every status an order can move through, in workflow order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

func IsOrderStatus(s string) bool {
	for _, st := range orderStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDineIn   OrderType = "dine-in"
)

func IsOrderType(s string) bool {
	switch OrderType(s) {
	case OrderTypeDelivery, OrderTypePickup, OrderTypeDineIn:
		return true
	}
	return false
}
